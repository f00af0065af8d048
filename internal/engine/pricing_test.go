package engine

import (
	"testing"

	"github.com/smarteats/orderflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteWithPromoAndTax(t *testing.T) {
	pricing := NewPricingEngine(testPricingConfig())

	items := []models.LineItem{
		line("m1", "Paneer Butter Masala", 150, 3),
	}

	quote, err := pricing.Quote(items, "SAVE20", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(450), quote.Subtotal)
	assert.Equal(t, int64(30), quote.DeliveryFee)
	assert.Equal(t, int64(23), quote.Taxes) // round(450 * 0.05)
	assert.Equal(t, int64(80), quote.Discount, "20 percent of 450 is 90, capped at 80")
	assert.Equal(t, int64(423), quote.Total)
}

func TestQuotePromoTable(t *testing.T) {
	pricing := NewPricingEngine(testPricingConfig())
	items := []models.LineItem{line("m1", "Biryani", 441, 1)}

	tests := []struct {
		name     string
		code     string
		discount int64
		total    int64
	}{
		{name: "no promo", code: "", discount: 0, total: 493},
		{name: "percent capped", code: "SAVE20", discount: 80, total: 413},
		{name: "first order", code: "FIRST50", discount: 100, total: 393},
		{name: "free delivery", code: "FREEDEL", discount: 30, total: 463},
		{name: "case insensitive", code: "save20", discount: 80, total: 413},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := pricing.Quote(items, tt.code, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(441), quote.Subtotal)
			assert.Equal(t, int64(22), quote.Taxes)
			assert.Equal(t, tt.discount, quote.Discount)
			assert.Equal(t, tt.total, quote.Total)
		})
	}
}

func TestQuoteInvalidPromoCode(t *testing.T) {
	pricing := NewPricingEngine(testPricingConfig())
	items := []models.LineItem{line("m1", "Dosa", 100, 2)}

	quote, err := pricing.Quote(items, "XYZ123", 0, 0)
	assert.ErrorIs(t, err, models.ErrInvalidPromoCode)
	assert.Equal(t, int64(0), quote.Discount)
	assert.Equal(t, int64(200), quote.Subtotal, "quote is still usable without the coupon")
}

func TestQuotePointsRedemption(t *testing.T) {
	pricing := NewPricingEngine(testPricingConfig())
	items := []models.LineItem{line("m1", "Thali", 200, 1)}

	// 10 points = 1 rupee
	quote, err := pricing.Quote(items, "", 100, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(100), quote.PointsRedeemed)
	assert.Equal(t, int64(10), quote.PointsDiscount)
	assert.Equal(t, int64(200+30+10-10), quote.Total)
}

func TestQuoteClampsAdversarialInput(t *testing.T) {
	pricing := NewPricingEngine(testPricingConfig())

	t.Run("negative and zero quantities dropped", func(t *testing.T) {
		items := []models.LineItem{
			line("m1", "Dosa", 100, -3),
			line("m2", "Idli", 80, 0),
			line("m3", "Vada", 60, 2),
		}
		quote, err := pricing.Quote(items, "", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(120), quote.Subtotal)
		assert.Len(t, quote.Items, 1)
	})

	t.Run("negative price lines ignored", func(t *testing.T) {
		items := []models.LineItem{
			line("m1", "Glitch", -500, 2),
			line("m2", "Vada", 60, 1),
		}
		quote, err := pricing.Quote(items, "", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(60), quote.Subtotal)
	})

	t.Run("redemption clamped to balance and bill", func(t *testing.T) {
		items := []models.LineItem{line("m1", "Vada", 60, 1)}
		quote, err := pricing.Quote(items, "", 1000000, 40)
		require.NoError(t, err)
		assert.Equal(t, int64(40), quote.PointsRedeemed)
		assert.Equal(t, int64(4), quote.PointsDiscount)
		assert.GreaterOrEqual(t, quote.Total, int64(0))
	})

	t.Run("negative redemption request ignored", func(t *testing.T) {
		items := []models.LineItem{line("m1", "Vada", 60, 1)}
		quote, err := pricing.Quote(items, "", -50, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(0), quote.PointsRedeemed)
	})

	t.Run("total never negative", func(t *testing.T) {
		staff := testPricingConfig()
		staff.Promos = append(staff.Promos, models.PromoRule{Code: "STAFF99", Percent: 0.99, Basis: "bill"})
		quote, err := NewPricingEngine(staff).Quote([]models.LineItem{line("m1", "Chai", 10, 1)}, "STAFF99", 1000, 1000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, quote.Total, int64(0))
	})
}

func TestPointsEarned(t *testing.T) {
	pricing := NewPricingEngine(testPricingConfig())

	assert.Equal(t, int64(42), pricing.PointsEarned(423))
	assert.Equal(t, int64(0), pricing.PointsEarned(9))
	assert.Equal(t, int64(0), pricing.PointsEarned(0))
	assert.Equal(t, int64(0), pricing.PointsEarned(-5))
}
