package factories

import (
	"math/rand"
	"strings"
	"time"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
)

type DriverFactory struct{}

func (df *DriverFactory) CreateDriver(config *models.Config) *models.Driver {
	person := fake.Person()
	now := time.Now()

	return &models.Driver{
		ID:              cuid.New(),
		Email:           fake.Internet().Email(),
		Name:            person.Name(),
		Phone:           fake.Phone().Number(),
		VehicleType:     randomVehicleType(),
		VehicleNumber:   strings.ToUpper(fake.Bothify("ka##??####")),
		City:            config.CityName,
		Status:          models.DriverStatusApproved,
		IsOnline:        fake.Bool(),
		IsBusy:          false,
		AverageRating:   fake.Float64(1, 3, 5),
		TotalRatings:    fake.IntBetween(0, 500),
		CurrentLocation: randomCityLocation(config),
		JoinedAt:        fake.Time().TimeBetween(now.AddDate(-2, 0, 0), now),
	}
}

func randomVehicleType() string {
	types := []string{"bike", "scooter", "bicycle"}
	return types[rand.Intn(len(types))]
}
