package models

import (
	"errors"
	"fmt"
)

// Business-rule failures surfaced at component boundaries. Infrastructure
// errors are wrapped with %w and propagate unchanged.
var (
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrInvalidPromoCode   = errors.New("invalid promo code")
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	ErrAlreadyAssigned    = errors.New("order already assigned to another driver")
	ErrDriverBusy         = errors.New("driver already has an active delivery")
	ErrDriverNotEligible  = errors.New("driver is offline or not approved")
	ErrEmptyCart          = errors.New("cart is empty or has no valid items")
	ErrEmptyAddress       = errors.New("delivery address is required")
	ErrRestaurantMismatch = errors.New("cart holds items from another restaurant")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflicting concurrent update, retry")
)

// TransitionError wraps ErrInvalidTransition with the attempted edge.
func TransitionError(orderID, from, to string) error {
	return fmt.Errorf("order %s: %s -> %s: %w", orderID, from, to, ErrInvalidTransition)
}
