package models

import "time"

// LoyaltyPoints is the per-user balance row. Created lazily on the user's
// first order, never deleted.
type LoyaltyPoints struct {
	ID              string    `json:"id"`
	UserEmail       string    `json:"user_email"`
	AvailablePoints int64     `json:"available_points"`
	LifetimePoints  int64     `json:"lifetime_points"`
	Tier            string    `json:"tier"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PointsTransaction is an append-only ledger entry. Points are signed:
// positive for earned, negative for redeemed.
type PointsTransaction struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"user_email"`
	OrderID     string    `json:"order_id"`
	Points      int64     `json:"points"`
	Type        string    `json:"type"` // "earned", "redeemed"
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TierFor maps lifetime points onto the fixed tier thresholds.
func TierFor(lifetimePoints int64) string {
	switch {
	case lifetimePoints >= 5000:
		return TierPlatinum
	case lifetimePoints >= 2000:
		return TierGold
	case lifetimePoints >= 500:
		return TierSilver
	default:
		return TierBronze
	}
}
