package engine

import (
	"context"
	"testing"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemCreatesAndMerges(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("cart@test.in")

	cart, err := app.carts.AddItem(ctx, customer, restaurant, line("m1", "Dosa", 100, 1))
	require.NoError(t, err)
	assert.Equal(t, restaurant.ID, cart.RestaurantID)
	assert.Equal(t, int64(100), cart.Subtotal)

	// Same item merges into one line.
	cart, err = app.carts.AddItem(ctx, customer, restaurant, line("m1", "Dosa", 100, 2))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(300), cart.Subtotal)

	// Same item with a different customization stays separate.
	extra := line("m1", "Dosa", 110, 1)
	extra.CustomizationKey = "extra-ghee"
	cart, err = app.carts.AddItem(ctx, customer, restaurant, extra)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemRestaurantMismatch(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	first := testRestaurant(t, app)
	other := &models.Restaurant{ID: cuid.New(), Name: "Other Place", Email: "other@test.in"}
	require.NoError(t, app.store.Restaurants.Create(ctx, other))
	customer := testCustomer("mismatch@test.in")

	_, err := app.carts.AddItem(ctx, customer, first, line("m1", "Dosa", 100, 1))
	require.NoError(t, err)

	_, err = app.carts.AddItem(ctx, customer, other, line("x1", "Pizza", 250, 1))
	assert.ErrorIs(t, err, models.ErrRestaurantMismatch)

	// ReplaceCart is the confirmed switch: old cart is dropped.
	cart, err := app.carts.ReplaceCart(ctx, customer, other, line("x1", "Pizza", 250, 1))
	require.NoError(t, err)
	assert.Equal(t, other.ID, cart.RestaurantID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(250), cart.Subtotal)
}

func TestSetQuantityRemovesAndDeletes(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("qty@test.in")

	_, err := app.carts.AddItem(ctx, customer, restaurant, line("m1", "Dosa", 100, 2))
	require.NoError(t, err)
	_, err = app.carts.AddItem(ctx, customer, restaurant, line("m2", "Idli", 80, 1))
	require.NoError(t, err)

	cart, err := app.carts.SetQuantity(ctx, customer, "m1", "", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(580), cart.Subtotal)

	cart, err = app.carts.SetQuantity(ctx, customer, "m1", "", 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "m2", cart.Items[0].MenuItemID)

	// Removing the last line deletes the cart entirely.
	cart, err = app.carts.SetQuantity(ctx, customer, "m2", "", 0)
	require.NoError(t, err)
	assert.Nil(t, cart)

	_, err = app.carts.Get(ctx, customer)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReorderIsDeterministic(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("reorder@test.in")

	order := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{},
		line("m1", "Dosa", 100, 2), line("m2", "Idli", 80, 1))

	first, err := app.carts.Reorder(ctx, customer, order)
	require.NoError(t, err)
	second, err := app.carts.Reorder(ctx, customer, order)
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, first.RestaurantID, second.RestaurantID)
	assert.Equal(t, order.Subtotal, second.Subtotal)
}

func TestReorderSkipsInvalidLines(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	customer := testCustomer("stale@test.in")

	order := &models.Order{
		ID:             cuid.New(),
		OrderNumber:    "SE00000001",
		RestaurantID:   "r1",
		RestaurantName: "Old Place",
		Items: []models.LineItem{
			{MenuItemID: "m1", Name: "Dosa", Price: 100, Quantity: 0},
			{MenuItemID: "m2", Name: "Idli", Price: 80, Quantity: 2},
		},
	}

	cart, err := app.carts.Reorder(ctx, customer, order)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "m2", cart.Items[0].MenuItemID)

	order.Items = order.Items[:1]
	_, err = app.carts.Reorder(ctx, customer, order)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}
