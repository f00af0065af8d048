package models

type MenuItem struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"` // whole rupees
	Category     string  `json:"category"`
	IsVeg        bool    `json:"is_veg"`
	IsAvailable  bool    `json:"is_available"`
	ImageURL     string  `json:"image_url"`
	Popularity   float64 `json:"popularity"`
}
