package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/smarteats/orderflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAvailableGating(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("avail@test.in")
	driver := testDriver(t, app, "gate@test.in")

	order := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))

	available, err := app.assignment.ListAvailable(ctx, driver)
	require.NoError(t, err)
	assert.Empty(t, available, "placed orders are not yet visible")

	advanceToReady(t, app, restaurant, order.ID)

	available, err = app.assignment.ListAvailable(ctx, driver)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, order.ID, available[0].ID)

	offline := *driver
	offline.IsOnline = false
	_, err = app.assignment.ListAvailable(ctx, &offline)
	assert.ErrorIs(t, err, models.ErrDriverNotEligible)

	pending := *driver
	pending.Status = models.DriverStatusPending
	_, err = app.assignment.ListAvailable(ctx, &pending)
	assert.ErrorIs(t, err, models.ErrDriverNotEligible)
}

func TestAcceptBindsDriverAndOrder(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("bind@test.in")
	driver := testDriver(t, app, "bind-driver@test.in")

	order := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))
	advanceToReady(t, app, restaurant, order.ID)

	accepted, err := app.assignment.Accept(ctx, driver, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPickedUp, accepted.OrderStatus)
	assert.Equal(t, driver.Email, accepted.DriverEmail)

	stored, err := app.store.Drivers.GetByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBusy)

	// A busy driver cannot take a second order.
	second := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))
	advanceToReady(t, app, restaurant, second.ID)
	_, err = app.assignment.Accept(ctx, driver, second.ID)
	assert.ErrorIs(t, err, models.ErrDriverBusy)

	// The claimed order disappears from the pool.
	fresh := testDriver(t, app, "fresh@test.in")
	available, err := app.assignment.ListAvailable(ctx, fresh)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, second.ID, available[0].ID)
}

func TestAcceptRaceHasOneWinner(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("race@test.in")
	first := testDriver(t, app, "race1@test.in")
	second := testDriver(t, app, "race2@test.in")

	order := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))
	advanceToReady(t, app, restaurant, order.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, d := range []*models.Driver{first, second} {
		wg.Add(1)
		go func(i int, d *models.Driver) {
			defer wg.Done()
			_, errs[i] = app.assignment.Accept(ctx, d, order.ID)
		}(i, d)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, models.ErrAlreadyAssigned)
		}
	}
	assert.Equal(t, 1, winners, "exactly one driver claims the order")

	got, err := app.store.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPickedUp, got.OrderStatus)
	assert.NotEmpty(t, got.DriverEmail)

	// The loser's busy flag was rolled back.
	for _, d := range []*models.Driver{first, second} {
		stored, err := app.store.Drivers.GetByID(ctx, d.ID)
		require.NoError(t, err)
		if stored.Email == got.DriverEmail {
			assert.True(t, stored.IsBusy)
		} else {
			assert.False(t, stored.IsBusy)
		}
	}
}

func TestCompleteDeliverySettlesEverything(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("settle@test.in")
	driver := testDriver(t, app, "settle-driver@test.in")

	order := placeTestOrder(t, app, customer, restaurant,
		CheckoutOptions{PromoCode: "SAVE20"},
		line("m1", "Paneer Butter Masala", 150, 3))
	advanceToReady(t, app, restaurant, order.ID)

	_, err := app.assignment.Accept(ctx, driver, order.ID)
	require.NoError(t, err)
	actor := models.Actor{Email: driver.Email, Name: driver.Name, Role: models.RoleDriver}
	_, err = app.machine.Transition(ctx, actor, order.ID, models.OrderStatusOnTheWay)
	require.NoError(t, err)

	delivered, err := app.assignment.CompleteDelivery(ctx, driver, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.OrderStatus)
	assert.False(t, delivered.DeliveredAt.IsZero())

	// Flat payout, busy cleared, delivery counted.
	stored, err := app.store.Drivers.GetByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBusy)
	assert.Equal(t, 1, stored.TotalDeliveries)
	assert.Equal(t, int64(50), stored.TotalEarnings)

	// Customer's points land at delivery.
	account, err := app.loyalty.Account(ctx, customer.Email)
	require.NoError(t, err)
	assert.Equal(t, int64(42), account.AvailablePoints)

	// Completing out of order fails: a picked_up order is not deliverable.
	again := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))
	advanceToReady(t, app, restaurant, again.ID)
	_, err = app.assignment.Accept(ctx, driver, again.ID)
	require.NoError(t, err)
	_, err = app.assignment.CompleteDelivery(ctx, driver, again.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestDeliveredOnlyViaCompleteDelivery(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("shortcut@test.in")
	driver := testDriver(t, app, "shortcut-driver@test.in")

	order := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))
	advanceToReady(t, app, restaurant, order.ID)

	_, err := app.assignment.Accept(ctx, driver, order.ID)
	require.NoError(t, err)
	actor := models.Actor{Email: driver.Email, Name: driver.Name, Role: models.RoleDriver}
	_, err = app.machine.Transition(ctx, actor, order.ID, models.OrderStatusOnTheWay)
	require.NoError(t, err)

	// Marking delivered directly would skip the payout, the busy flag and
	// the customer's points, so the edge is not reachable from Transition.
	_, err = app.machine.Transition(ctx, actor, order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err := app.store.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOnTheWay, got.OrderStatus)

	delivered, err := app.assignment.CompleteDelivery(ctx, driver, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.OrderStatus)

	stored, err := app.store.Drivers.GetByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBusy)
	assert.Equal(t, 1, stored.TotalDeliveries)
}

func TestAcceptRequiresEligibleDriver(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	restaurant := testRestaurant(t, app)
	customer := testCustomer("elig@test.in")
	driver := testDriver(t, app, "elig-driver@test.in")

	order := placeTestOrder(t, app, customer, restaurant, CheckoutOptions{}, line("m1", "Dosa", 100, 1))
	advanceToReady(t, app, restaurant, order.ID)

	offline := *driver
	offline.IsOnline = false
	_, err := app.assignment.Accept(ctx, &offline, order.ID)
	assert.ErrorIs(t, err, models.ErrDriverNotEligible)

	// The order is untouched and still claimable.
	accepted, err := app.assignment.Accept(ctx, driver, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPickedUp, accepted.OrderStatus)
}
