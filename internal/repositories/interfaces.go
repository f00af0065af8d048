package repositories

import (
	"context"
	"time"

	"github.com/smarteats/orderflow/internal/models"
)

// Conditional updates return (false, nil) when the expected prior state no
// longer holds, so callers can tell a lost race from an infrastructure error.

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByCustomer(ctx context.Context, email string) ([]*models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*models.Order, error)
	ListByDriver(ctx context.Context, email string) ([]*models.Order, error)
	ListUnassignedReady(ctx context.Context) ([]*models.Order, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Order, error)
	ListScheduledDue(ctx context.Context, now time.Time) ([]*models.Order, error)
	// UpdateStatusIf advances order_status only when it still equals expected.
	UpdateStatusIf(ctx context.Context, id, expected, next string) (bool, error)
	// AssignDriverIf binds the driver and moves ready -> picked_up in one
	// conditional write; fails when the order is no longer ready or already
	// has a driver.
	AssignDriverIf(ctx context.Context, id string, driver *models.Driver) (bool, error)
	SetReviewed(ctx context.Context, id string) error
}

type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByCustomer(ctx context.Context, email string) (*models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) error
}

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	BulkCreate(ctx context.Context, drivers []*models.Driver) error
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	GetByEmail(ctx context.Context, email string) (*models.Driver, error)
	ListOnlineApproved(ctx context.Context) ([]*models.Driver, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetOnline(ctx context.Context, id string, online bool) error
	// SetBusyIf flips is_busy only when it still equals expected.
	SetBusyIf(ctx context.Context, id string, expected, next bool) (bool, error)
	// RecordDelivery clears is_busy and credits the flat payout.
	RecordDelivery(ctx context.Context, id string, payout int64) error
	Count(ctx context.Context) (int, error)
}

type LoyaltyRepository interface {
	Create(ctx context.Context, account *models.LoyaltyPoints) error
	GetByUser(ctx context.Context, email string) (*models.LoyaltyPoints, error)
	// UpdateBalanceIf writes the new balance only when available_points still
	// equals expectedAvailable.
	UpdateBalanceIf(ctx context.Context, id string, expectedAvailable, newAvailable, newLifetime int64, tier string) (bool, error)
	AppendTransaction(ctx context.Context, tx *models.PointsTransaction) error
	ListTransactions(ctx context.Context, email string) ([]*models.PointsTransaction, error)
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	GetAll(ctx context.Context) (map[string]*models.Restaurant, error)
	Count(ctx context.Context) (int, error)
}

type MenuItemRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	BulkCreate(ctx context.Context, items []*models.MenuItem) error
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
	GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error)
	Count(ctx context.Context) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, email string) ([]*models.Notification, error)
}

// Store bundles the per-entity repositories the engine operates on.
type Store struct {
	Orders        OrderRepository
	Carts         CartRepository
	Drivers       DriverRepository
	Loyalty       LoyaltyRepository
	Restaurants   RestaurantRepository
	MenuItems     MenuItemRepository
	Notifications NotificationRepository
}
