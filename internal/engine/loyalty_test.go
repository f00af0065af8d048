package engine

import (
	"context"
	"testing"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountLazyCreate(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	account, err := app.loyalty.Account(ctx, "fresh@test.in")
	require.NoError(t, err)
	assert.Equal(t, models.TierBronze, account.Tier)
	assert.Equal(t, int64(0), account.AvailablePoints)
	assert.Equal(t, int64(0), account.LifetimePoints)

	again, err := app.loyalty.Account(ctx, "fresh@test.in")
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
}

func TestAccrueAndTierPromotion(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	order := &models.Order{
		ID:            cuid.New(),
		OrderNumber:   "SE00000042",
		CustomerEmail: "tier@test.in",
		PointsEarned:  480,
	}
	require.NoError(t, app.loyalty.Accrue(ctx, order))

	account, err := app.loyalty.Account(ctx, "tier@test.in")
	require.NoError(t, err)
	assert.Equal(t, int64(480), account.AvailablePoints)
	assert.Equal(t, models.TierBronze, account.Tier)

	// Crossing 500 lifetime points flips the tier to silver.
	order2 := &models.Order{
		ID:            cuid.New(),
		OrderNumber:   "SE00000043",
		CustomerEmail: "tier@test.in",
		PointsEarned:  30,
	}
	require.NoError(t, app.loyalty.Accrue(ctx, order2))

	account, err = app.loyalty.Account(ctx, "tier@test.in")
	require.NoError(t, err)
	assert.Equal(t, int64(510), account.AvailablePoints)
	assert.Equal(t, int64(510), account.LifetimePoints)
	assert.Equal(t, models.TierSilver, account.Tier)
}

func TestRedeemInsufficientPoints(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	order := &models.Order{
		ID:             cuid.New(),
		OrderNumber:    "SE00000044",
		CustomerEmail:  "short@test.in",
		PointsRedeemed: 100,
	}
	err := app.loyalty.Redeem(ctx, order)
	assert.ErrorIs(t, err, models.ErrInsufficientPoints)
}

func TestRedeemPreservesLifetimePoints(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	earn := &models.Order{
		ID:            cuid.New(),
		OrderNumber:   "SE00000045",
		CustomerEmail: "spend@test.in",
		PointsEarned:  600,
	}
	require.NoError(t, app.loyalty.Accrue(ctx, earn))

	spend := &models.Order{
		ID:             cuid.New(),
		OrderNumber:    "SE00000046",
		CustomerEmail:  "spend@test.in",
		PointsRedeemed: 200,
	}
	require.NoError(t, app.loyalty.Redeem(ctx, spend))

	account, err := app.loyalty.Account(ctx, "spend@test.in")
	require.NoError(t, err)
	assert.Equal(t, int64(400), account.AvailablePoints)
	assert.Equal(t, int64(600), account.LifetimePoints, "redemption never reduces lifetime points")
	assert.Equal(t, models.TierSilver, account.Tier, "tier is based on lifetime, not available")
}

func TestLedgerConservation(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	email := "ledger@test.in"

	orders := []*models.Order{
		{ID: cuid.New(), OrderNumber: "SE1", CustomerEmail: email, PointsEarned: 120},
		{ID: cuid.New(), OrderNumber: "SE2", CustomerEmail: email, PointsEarned: 50},
	}
	for _, o := range orders {
		require.NoError(t, app.loyalty.Accrue(ctx, o))
	}
	spend := &models.Order{ID: cuid.New(), OrderNumber: "SE3", CustomerEmail: email, PointsRedeemed: 40}
	require.NoError(t, app.loyalty.Redeem(ctx, spend))

	history, err := app.loyalty.History(ctx, email)
	require.NoError(t, err)
	require.Len(t, history, 3)

	var sum int64
	for _, tx := range history {
		sum += tx.Points
	}
	account, err := app.loyalty.Account(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, account.AvailablePoints, sum, "balance equals the signed sum of the ledger")
	assert.Equal(t, int64(130), sum)
}

func TestAccrueZeroPointsIsNoop(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	order := &models.Order{ID: cuid.New(), OrderNumber: "SE4", CustomerEmail: "noop@test.in", PointsEarned: 0}
	require.NoError(t, app.loyalty.Accrue(ctx, order))

	history, err := app.loyalty.History(ctx, "noop@test.in")
	require.NoError(t, err)
	assert.Empty(t, history)
}
