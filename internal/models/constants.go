package models

const (
	OrderStatusScheduled = "scheduled"
	OrderStatusPlaced    = "placed"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusPickedUp  = "picked_up"
	OrderStatusOnTheWay  = "on_the_way"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	PaymentMethodCOD  = "cod"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	DriverStatusPending   = "pending"
	DriverStatusApproved  = "approved"
	DriverStatusRejected  = "rejected"
	DriverStatusSuspended = "suspended"

	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"

	PointsTypeEarned   = "earned"
	PointsTypeRedeemed = "redeemed"

	RoleCustomer   = "customer"
	RoleRestaurant = "restaurant"
	RoleDriver     = "driver"
	RoleAdmin      = "admin"
	RoleSystem     = "system"

	NotificationTypeOrder    = "order"
	NotificationTypeDelivery = "delivery"
	NotificationTypeLoyalty  = "loyalty"
)
