package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

func NewPool(ctx context.Context, cfg models.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

// NewStore wires every repository onto one pgx pool.
func NewStore(pool *pgxpool.Pool) *repositories.Store {
	return &repositories.Store{
		Orders:        NewOrderRepository(pool),
		Carts:         NewCartRepository(pool),
		Drivers:       NewDriverRepository(pool),
		Loyalty:       NewLoyaltyRepository(pool),
		Restaurants:   NewRestaurantRepository(pool),
		MenuItems:     NewMenuItemRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}
