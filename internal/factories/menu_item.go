package factories

import (
	"math/rand"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
)

type MenuItemFactory struct{}

func (mf *MenuItemFactory) CreateMenuItem(restaurant *models.Restaurant) *models.MenuItem {
	return &models.MenuItem{
		ID:           cuid.New(),
		RestaurantID: restaurant.ID,
		Name:         randomDish(restaurant.Cuisines),
		Description:  fake.Lorem().Sentence(8),
		Price:        int64(fake.IntBetween(49, 499)), // whole rupees
		Category:     randomCategory(),
		IsVeg:        fake.Bool(),
		IsAvailable:  true,
		ImageURL:     fake.Internet().URL(),
		Popularity:   fake.Float64(2, 0, 100) / 100,
	}
}

func randomDish(cuisines []string) string {
	dishes := map[string][]string{
		"North Indian": {"Paneer Butter Masala", "Dal Makhani", "Butter Chicken", "Chole Bhature"},
		"South Indian": {"Masala Dosa", "Idli Sambar", "Medu Vada", "Filter Coffee"},
		"Chinese":      {"Hakka Noodles", "Manchurian", "Fried Rice", "Chilli Paneer"},
		"Italian":      {"Margherita Pizza", "Penne Arrabbiata", "Lasagna", "Tiramisu"},
		"Mughlai":      {"Chicken Korma", "Seekh Kebab", "Mutton Rogan Josh", "Shahi Tukda"},
		"Street Food":  {"Pani Puri", "Vada Pav", "Pav Bhaji", "Bhel Puri"},
		"Biryani":      {"Hyderabadi Biryani", "Chicken Dum Biryani", "Veg Biryani", "Egg Biryani"},
		"Fast Food":    {"Cheeseburger", "French Fries", "Club Sandwich", "Hot Dog"},
		"Desserts":     {"Gulab Jamun", "Rasmalai", "Chocolate Brownie", "Kulfi"},
		"Beverages":    {"Masala Chai", "Cold Coffee", "Fresh Lime Soda", "Mango Lassi"},
		"Healthy":      {"Quinoa Bowl", "Greek Salad", "Sprout Chaat", "Fruit Bowl"},
	}
	cuisine := cuisines[rand.Intn(len(cuisines))]
	if names, ok := dishes[cuisine]; ok {
		return names[rand.Intn(len(names))]
	}
	return "Chef's Special"
}

func randomCategory() string {
	categories := []string{"starters", "mains", "breads", "desserts", "beverages"}
	return categories[rand.Intn(len(categories))]
}
