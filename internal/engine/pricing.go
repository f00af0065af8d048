package engine

import (
	"math"
	"strings"

	"github.com/smarteats/orderflow/internal/models"
)

// PricingEngine computes the bill for a set of cart lines. It never rejects
// out-of-range input: quantities, redemption amounts and discounts are
// clamped so the resulting bill is always coherent and non-negative, even
// when the cart was mutated concurrently from another session.
type PricingEngine struct {
	cfg   models.PricingConfig
	rules map[string]models.PromoRule
}

// Quote is one priced bill. All amounts are whole rupees.
type Quote struct {
	Items          []models.LineItem `json:"items"`
	Subtotal       int64             `json:"subtotal"`
	DeliveryFee    int64             `json:"delivery_fee"`
	Taxes          int64             `json:"taxes"`
	Discount       int64             `json:"discount"`
	PointsDiscount int64             `json:"points_discount"`
	PointsRedeemed int64             `json:"points_redeemed"`
	Total          int64             `json:"total"`
}

func NewPricingEngine(cfg models.PricingConfig) *PricingEngine {
	rules := make(map[string]models.PromoRule, len(cfg.Promos))
	for _, r := range cfg.Promos {
		rules[strings.ToUpper(strings.TrimSpace(r.Code))] = r
	}
	return &PricingEngine{cfg: cfg, rules: rules}
}

// Quote prices the given lines. An unknown promo code yields a zero discount
// and ErrInvalidPromoCode alongside an otherwise valid quote; the caller
// decides whether that aborts checkout or just resets the coupon field.
// pointsToRedeem is clamped to [0, min(availablePoints, payable*pointsPerRupee)].
func (p *PricingEngine) Quote(items []models.LineItem, promoCode string, pointsToRedeem, availablePoints int64) (Quote, error) {
	valid := models.FilterValidItems(items)

	var subtotal int64
	for _, it := range valid {
		if it.Price > 0 {
			subtotal += it.Price * int64(it.Quantity)
		}
	}

	taxes := int64(math.Round(float64(subtotal) * p.cfg.TaxRate))
	if taxes < 0 {
		taxes = 0
	}
	fee := p.cfg.DeliveryFee
	if fee < 0 {
		fee = 0
	}

	var promoErr error
	var discount int64
	if code := strings.ToUpper(strings.TrimSpace(promoCode)); code != "" {
		rule, ok := p.rules[code]
		if !ok {
			promoErr = models.ErrInvalidPromoCode
		} else {
			discount = applyPromo(rule, subtotal, fee, taxes)
		}
	}
	if max := subtotal + fee + taxes; discount > max {
		discount = max
	}
	if discount < 0 {
		discount = 0
	}

	payable := subtotal + fee + taxes - discount
	if payable < 0 {
		payable = 0
	}

	redeemed := clampPoints(pointsToRedeem, availablePoints, payable*p.cfg.PointsPerRupee)
	pointsDiscount := redeemed / p.cfg.PointsPerRupee

	total := payable - pointsDiscount
	if total < 0 {
		total = 0
	}

	return Quote{
		Items:          valid,
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		Taxes:          taxes,
		Discount:       discount,
		PointsDiscount: pointsDiscount,
		PointsRedeemed: redeemed,
		Total:          total,
	}, promoErr
}

// PointsEarned is computed once, at order placement, from the final total.
func (p *PricingEngine) PointsEarned(total int64) int64 {
	if total <= 0 || p.cfg.RupeesPerPoint <= 0 {
		return 0
	}
	return total / p.cfg.RupeesPerPoint
}

// Rules exposes the promo table for display (coupon listings).
func (p *PricingEngine) Rules() []models.PromoRule {
	return p.cfg.Promos
}

func applyPromo(rule models.PromoRule, subtotal, fee, taxes int64) int64 {
	if rule.FreeDelivery {
		return fee
	}
	basis := subtotal
	if rule.Basis == "bill" {
		basis = subtotal + fee + taxes
	}
	d := int64(math.Floor(float64(basis) * rule.Percent))
	if rule.MaxDiscount > 0 && d > rule.MaxDiscount {
		d = rule.MaxDiscount
	}
	if d < 0 {
		d = 0
	}
	return d
}

func clampPoints(requested, available, maxRedeemable int64) int64 {
	if requested < 0 {
		return 0
	}
	if available < 0 {
		available = 0
	}
	if requested > available {
		requested = available
	}
	if requested > maxRedeemable {
		requested = maxRedeemable
	}
	return requested
}
