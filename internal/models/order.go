package models

import "time"

// LineItem is a single cart or order line. Price is in whole rupees.
type LineItem struct {
	MenuItemID           string `json:"menu_item_id"`
	Name                 string `json:"name"`
	Price                int64  `json:"price"`
	Quantity             int    `json:"quantity"`
	CustomizationKey     string `json:"customization_key,omitempty"`
	CustomizationDetails string `json:"customization_details,omitempty"`
	ImageURL             string `json:"image_url,omitempty"`
}

type Order struct {
	ID                string     `json:"id"`
	OrderNumber       string     `json:"order_number"`
	CustomerEmail     string     `json:"customer_email"`
	CustomerName      string     `json:"customer_name"`
	RestaurantID      string     `json:"restaurant_id"`
	RestaurantName    string     `json:"restaurant_name"`
	Items             []LineItem `json:"items"`
	Subtotal          int64      `json:"subtotal"`
	DeliveryFee       int64      `json:"delivery_fee"`
	Taxes             int64      `json:"taxes"`
	Discount          int64      `json:"discount"`
	PointsEarned      int64      `json:"points_earned"`
	PointsRedeemed    int64      `json:"points_redeemed"`
	TotalAmount       int64      `json:"total_amount"`
	PaymentMethod     string     `json:"payment_method"` // "cod", "card", "upi"
	PaymentStatus     string     `json:"payment_status"` // "pending", "paid"
	OrderStatus       string     `json:"order_status"`
	IsScheduled       bool       `json:"is_scheduled"`
	ScheduledFor      time.Time  `json:"scheduled_for,omitempty"`
	DeliveryAddress   string     `json:"delivery_address"`
	DeliveryLatitude  float64    `json:"delivery_latitude"`
	DeliveryLongitude float64    `json:"delivery_longitude"`
	Instructions      string     `json:"delivery_instructions,omitempty"`
	DriverID          string     `json:"driver_id,omitempty"`
	DriverEmail       string     `json:"driver_email,omitempty"`
	DriverName        string     `json:"driver_name,omitempty"`
	IsReviewed        bool       `json:"is_reviewed"`
	PlacedAt          time.Time  `json:"placed_at"`
	DeliveredAt       time.Time  `json:"delivered_at,omitempty"`
	CancelledAt       time.Time  `json:"cancelled_at,omitempty"`
}

// ValidItems returns the snapshot of lines that actually count towards the
// bill. Zero and negative quantities can appear after concurrent cart edits
// and are always filtered out, never rejected.
func (o *Order) ValidItems() []LineItem {
	return FilterValidItems(o.Items)
}

func FilterValidItems(items []LineItem) []LineItem {
	valid := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			valid = append(valid, it)
		}
	}
	return valid
}

// Active reports whether the order still occupies a driver.
func (o *Order) Active() bool {
	return o.OrderStatus == OrderStatusPickedUp || o.OrderStatus == OrderStatusOnTheWay
}

func (o *Order) Terminal() bool {
	return o.OrderStatus == OrderStatusDelivered || o.OrderStatus == OrderStatusCancelled
}
