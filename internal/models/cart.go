package models

import "time"

// Cart is the per-customer staging area for an order. All items belong to a
// single restaurant; switching restaurants replaces the whole cart.
type Cart struct {
	ID             string     `json:"id"`
	CustomerEmail  string     `json:"customer_email"`
	RestaurantID   string     `json:"restaurant_id"`
	RestaurantName string     `json:"restaurant_name"`
	Items          []LineItem `json:"items"`
	Subtotal       int64      `json:"subtotal"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RecalculateSubtotal recomputes the derived subtotal over valid lines.
func (c *Cart) RecalculateSubtotal() {
	var subtotal int64
	for _, it := range c.Items {
		if it.Quantity > 0 {
			subtotal += it.Price * int64(it.Quantity)
		}
	}
	c.Subtotal = subtotal
}

func (c *Cart) IsEmpty() bool {
	return len(FilterValidItems(c.Items)) == 0
}
