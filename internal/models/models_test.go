package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		lifetime int64
		tier     string
	}{
		{0, TierBronze},
		{499, TierBronze},
		{500, TierSilver},
		{1999, TierSilver},
		{2000, TierGold},
		{4999, TierGold},
		{5000, TierPlatinum},
		{100000, TierPlatinum},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(tt.lifetime), "lifetime %d", tt.lifetime)
	}
}

func TestFilterValidItems(t *testing.T) {
	items := []LineItem{
		{MenuItemID: "a", Price: 100, Quantity: 2},
		{MenuItemID: "b", Price: 50, Quantity: 0},
		{MenuItemID: "c", Price: 80, Quantity: -1},
	}
	valid := FilterValidItems(items)
	assert.Len(t, valid, 1)
	assert.Equal(t, "a", valid[0].MenuItemID)

	assert.Empty(t, FilterValidItems(nil))
}

func TestCartRecalculateSubtotal(t *testing.T) {
	cart := &Cart{Items: []LineItem{
		{Price: 100, Quantity: 2},
		{Price: 50, Quantity: 0}, // dead line, not counted
		{Price: 30, Quantity: 1},
	}}
	cart.RecalculateSubtotal()
	assert.Equal(t, int64(230), cart.Subtotal)
	assert.False(t, cart.IsEmpty())

	cart.Items = cart.Items[1:2]
	assert.True(t, cart.IsEmpty())
}

func TestOrderLifecycleHelpers(t *testing.T) {
	order := &Order{OrderStatus: OrderStatusOnTheWay}
	assert.True(t, order.Active())
	assert.False(t, order.Terminal())

	order.OrderStatus = OrderStatusDelivered
	assert.False(t, order.Active())
	assert.True(t, order.Terminal())

	order.OrderStatus = OrderStatusCancelled
	assert.True(t, order.Terminal())
}

func TestActorRoles(t *testing.T) {
	admin := Actor{Email: "ops@smarteats.in", Role: RoleAdmin}
	assert.True(t, admin.Privileged())
	assert.False(t, admin.Is(RoleRestaurant))

	restaurant := Actor{Email: "r@smarteats.in", Role: RoleRestaurant}
	assert.True(t, restaurant.Is(RoleRestaurant))
	assert.False(t, restaurant.Privileged())

	assert.True(t, SystemActor().Privileged())
}
