package models

type Restaurant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Cuisines    []string `json:"cuisines"`
	Location    Location `json:"location"`
	Address     string   `json:"address"`
	Rating      float64  `json:"rating"`
	IsOpen      bool     `json:"is_open"`
	AvgPrepTime float64  `json:"avg_prep_time"` // minutes
	MenuItems   []string `json:"menu_item_ids"`
}
