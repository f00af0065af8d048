package models

import "time"

type Driver struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	VehicleType     string    `json:"vehicle_type"`
	VehicleNumber   string    `json:"vehicle_number"`
	City            string    `json:"city"`
	Status          string    `json:"status"` // "pending", "approved", "rejected", "suspended"
	IsOnline        bool      `json:"is_online"`
	IsBusy          bool      `json:"is_busy"` // at most one active delivery
	TotalDeliveries int       `json:"total_deliveries"`
	TotalEarnings   int64     `json:"total_earnings"`
	AverageRating   float64   `json:"average_rating"`
	TotalRatings    int       `json:"total_ratings"`
	CurrentLocation Location  `json:"current_location"`
	JoinedAt        time.Time `json:"joined_at"`
}

// CanDeliver reports whether the driver may see or accept ready orders.
func (d *Driver) CanDeliver() bool {
	return d.IsOnline && d.Status == DriverStatusApproved
}
