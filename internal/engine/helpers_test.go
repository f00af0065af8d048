package engine

import (
	"context"
	"testing"
	"time"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
	"github.com/smarteats/orderflow/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

func testPricingConfig() models.PricingConfig {
	return models.PricingConfig{
		DeliveryFee:    30,
		TaxRate:        0.05,
		PointsPerRupee: 10,
		RupeesPerPoint: 10,
		Promos:         models.DefaultPromos(),
	}
}

type testApp struct {
	store      *repositories.Store
	pricing    *PricingEngine
	loyalty    *LoyaltyLedger
	carts      *CartAggregate
	machine    *OrderStateMachine
	assignment *DriverAssignmentProtocol
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := memory.NewStore()
	events := NewEventEmitter(&ConsoleOutput{}, "test")
	pricing := NewPricingEngine(testPricingConfig())
	loyalty := NewLoyaltyLedger(store.Loyalty)
	carts := NewCartAggregate(store.Carts)
	notifier := NewNotifier(store.Notifications)
	machine := NewOrderStateMachine(store, pricing, loyalty, carts, notifier, events)
	assignment := NewDriverAssignmentProtocol(store, machine, loyalty, events, models.AssignmentConfig{DeliveryPayout: 50})

	return &testApp{
		store:      store,
		pricing:    pricing,
		loyalty:    loyalty,
		carts:      carts,
		machine:    machine,
		assignment: assignment,
	}
}

func testRestaurant(t *testing.T, app *testApp) *models.Restaurant {
	t.Helper()
	restaurant := &models.Restaurant{
		ID:     cuid.New(),
		Name:   "Spice Garden",
		Email:  "orders@spicegarden.in",
		IsOpen: true,
	}
	require.NoError(t, app.store.Restaurants.Create(context.Background(), restaurant))
	return restaurant
}

func testDriver(t *testing.T, app *testApp, email string) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		ID:       cuid.New(),
		Email:    email,
		Name:     "Driver " + email,
		Status:   models.DriverStatusApproved,
		IsOnline: true,
		JoinedAt: time.Now(),
	}
	require.NoError(t, app.store.Drivers.Create(context.Background(), driver))
	return driver
}

func testCustomer(email string) models.Actor {
	return models.Actor{Email: email, Name: "Test Customer", Role: models.RoleCustomer}
}

func restaurantActor(r *models.Restaurant) models.Actor {
	return models.Actor{Email: r.Email, Name: r.Name, Role: models.RoleRestaurant}
}

func line(id, name string, price int64, qty int) models.LineItem {
	return models.LineItem{MenuItemID: id, Name: name, Price: price, Quantity: qty}
}

// placeTestOrder fills a cart and checks out, returning the new order.
func placeTestOrder(t *testing.T, app *testApp, customer models.Actor, restaurant *models.Restaurant, opts CheckoutOptions, items ...models.LineItem) *models.Order {
	t.Helper()
	ctx := context.Background()
	for _, it := range items {
		_, err := app.carts.AddItem(ctx, customer, restaurant, it)
		require.NoError(t, err)
	}
	if opts.DeliveryAddress == "" {
		opts.DeliveryAddress = "12 MG Road, Bangalore"
	}
	if opts.PaymentMethod == "" {
		opts.PaymentMethod = models.PaymentMethodCOD
	}
	order, err := app.machine.PlaceOrder(ctx, customer, opts)
	require.NoError(t, err)
	return order
}

// advanceToReady walks a placed order through the restaurant's side of the
// pipeline.
func advanceToReady(t *testing.T, app *testApp, restaurant *models.Restaurant, orderID string) *models.Order {
	t.Helper()
	ctx := context.Background()
	actor := restaurantActor(restaurant)
	var order *models.Order
	var err error
	for _, next := range []string{models.OrderStatusConfirmed, models.OrderStatusPreparing, models.OrderStatusReady} {
		order, err = app.machine.Transition(ctx, actor, orderID, next)
		require.NoError(t, err)
	}
	return order
}
