package factories

import (
	"math"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
)

var fake = faker.New()

type RestaurantFactory struct{}

func (rf *RestaurantFactory) CreateRestaurant(config *models.Config) *models.Restaurant {
	name := fake.Company().Name()

	return &models.Restaurant{
		ID:          cuid.New(),
		Name:        name,
		Email:       fake.Internet().Email(),
		Phone:       fake.Phone().Number(),
		Cuisines:    randomCuisines(),
		Location:    randomCityLocation(config),
		Address:     fake.Address().StreetAddress() + ", " + config.CityName,
		Rating:      fake.Float64(1, 1, 5),
		IsOpen:      true,
		AvgPrepTime: fake.Float64(0, 15, 45),
		MenuItems:   make([]string, 0),
	}
}

// randomCityLocation picks a point inside the configured urban radius.
func randomCityLocation(config *models.Config) models.Location {
	latRange := config.UrbanRadius / 111.0
	lonRange := latRange / math.Cos(config.CityLat*math.Pi/180.0)

	latOffset := (rand.Float64()*2 - 1) * latRange
	lonOffset := (rand.Float64()*2 - 1) * lonRange

	return models.Location{
		Lat: config.CityLat + latOffset,
		Lon: config.CityLon + lonOffset,
	}
}

func randomCuisines() []string {
	allCuisines := []string{"North Indian", "South Indian", "Chinese", "Italian", "Continental", "Mughlai", "Street Food", "Biryani", "Fast Food", "Desserts", "Beverages", "Healthy"}
	cuisineCount := rand.Intn(3) + 1 // 1 to 3 cuisines
	cuisines := make([]string, cuisineCount)
	for i := 0; i < cuisineCount; i++ {
		cuisines[i] = allCuisines[rand.Intn(len(allCuisines))]
	}
	return cuisines
}
