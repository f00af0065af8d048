package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

// Balance writes are conditional on the previously read available_points, so
// two orders settled concurrently for the same user cannot lose an update.
// The loser of the race rereads and retries.
const balanceRetries = 5

// LoyaltyLedger tracks point balances, tier thresholds and the append-only
// transaction history per user.
type LoyaltyLedger struct {
	loyalty repositories.LoyaltyRepository
}

func NewLoyaltyLedger(loyalty repositories.LoyaltyRepository) *LoyaltyLedger {
	return &LoyaltyLedger{loyalty: loyalty}
}

// Account returns the user's balance row, creating it lazily at bronze on
// first use.
func (l *LoyaltyLedger) Account(ctx context.Context, email string) (*models.LoyaltyPoints, error) {
	account, err := l.loyalty.GetByUser(ctx, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	account = &models.LoyaltyPoints{
		ID:        cuid.New(),
		UserEmail: email,
		Tier:      models.TierBronze,
		UpdatedAt: time.Now(),
	}
	if err := l.loyalty.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("creating loyalty account for %s: %w", email, err)
	}
	return account, nil
}

// Accrue credits order.PointsEarned to the customer, recomputes the tier and
// appends an earned ledger entry.
func (l *LoyaltyLedger) Accrue(ctx context.Context, order *models.Order) error {
	if order.PointsEarned <= 0 {
		return nil
	}

	for attempt := 0; attempt < balanceRetries; attempt++ {
		account, err := l.Account(ctx, order.CustomerEmail)
		if err != nil {
			return err
		}

		newAvailable := account.AvailablePoints + order.PointsEarned
		newLifetime := account.LifetimePoints + order.PointsEarned
		ok, err := l.loyalty.UpdateBalanceIf(ctx, account.ID,
			account.AvailablePoints, newAvailable, newLifetime, models.TierFor(newLifetime))
		if err != nil {
			return fmt.Errorf("accruing points for order %s: %w", order.OrderNumber, err)
		}
		if !ok {
			continue
		}

		return l.loyalty.AppendTransaction(ctx, &models.PointsTransaction{
			ID:          cuid.New(),
			UserEmail:   order.CustomerEmail,
			OrderID:     order.ID,
			Points:      order.PointsEarned,
			Type:        models.PointsTypeEarned,
			Description: fmt.Sprintf("Earned from Order #%s", order.OrderNumber),
			CreatedAt:   time.Now(),
		})
	}
	return models.ErrConflict
}

// Redeem debits points for an order. The caller has already clamped the
// amount to availability at quote time, but the balance may have moved since;
// a shortfall at settle time is ErrInsufficientPoints.
func (l *LoyaltyLedger) Redeem(ctx context.Context, order *models.Order) error {
	if order.PointsRedeemed <= 0 {
		return nil
	}

	for attempt := 0; attempt < balanceRetries; attempt++ {
		account, err := l.Account(ctx, order.CustomerEmail)
		if err != nil {
			return err
		}
		if account.AvailablePoints < order.PointsRedeemed {
			return models.ErrInsufficientPoints
		}

		newAvailable := account.AvailablePoints - order.PointsRedeemed
		ok, err := l.loyalty.UpdateBalanceIf(ctx, account.ID,
			account.AvailablePoints, newAvailable, account.LifetimePoints, account.Tier)
		if err != nil {
			return fmt.Errorf("redeeming points for order %s: %w", order.OrderNumber, err)
		}
		if !ok {
			continue
		}

		return l.loyalty.AppendTransaction(ctx, &models.PointsTransaction{
			ID:          cuid.New(),
			UserEmail:   order.CustomerEmail,
			OrderID:     order.ID,
			Points:      -order.PointsRedeemed,
			Type:        models.PointsTypeRedeemed,
			Description: fmt.Sprintf("Redeemed for Order #%s", order.OrderNumber),
			CreatedAt:   time.Now(),
		})
	}
	return models.ErrConflict
}

// History returns the user's ledger entries.
func (l *LoyaltyLedger) History(ctx context.Context, email string) ([]*models.PointsTransaction, error) {
	return l.loyalty.ListTransactions(ctx, email)
}
