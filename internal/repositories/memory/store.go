// Package memory is a mutex-guarded in-process store used by tests and the
// demo command. It mimics the remote document store: values are copied on
// the way in and out, and the conditional updates behave like server-side
// compare-and-swap.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

type state struct {
	mu            sync.Mutex
	orders        map[string]*models.Order
	carts         map[string]*models.Cart
	drivers       map[string]*models.Driver
	loyalty       map[string]*models.LoyaltyPoints
	transactions  []*models.PointsTransaction
	restaurants   map[string]*models.Restaurant
	menuItems     map[string]*models.MenuItem
	notifications []*models.Notification
}

// NewStore returns a repositories.Store backed by shared in-memory state.
func NewStore() *repositories.Store {
	s := &state{
		orders:      make(map[string]*models.Order),
		carts:       make(map[string]*models.Cart),
		drivers:     make(map[string]*models.Driver),
		loyalty:     make(map[string]*models.LoyaltyPoints),
		restaurants: make(map[string]*models.Restaurant),
		menuItems:   make(map[string]*models.MenuItem),
	}
	return &repositories.Store{
		Orders:        &orderRepo{s},
		Carts:         &cartRepo{s},
		Drivers:       &driverRepo{s},
		Loyalty:       &loyaltyRepo{s},
		Restaurants:   &restaurantRepo{s},
		MenuItems:     &menuItemRepo{s},
		Notifications: &notificationRepo{s},
	}
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.LineItem(nil), o.Items...)
	return &c
}

func copyCart(cart *models.Cart) *models.Cart {
	c := *cart
	c.Items = append([]models.LineItem(nil), cart.Items...)
	return &c
}

type orderRepo struct{ s *state }

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyOrder(order), nil
}

func (r *orderRepo) list(match func(*models.Order) bool) []*models.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Order
	for _, o := range r.s.orders {
		if match(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out
}

func (r *orderRepo) ListByCustomer(ctx context.Context, email string) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.CustomerEmail == email }), nil
}

func (r *orderRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.RestaurantID == restaurantID }), nil
}

func (r *orderRepo) ListByDriver(ctx context.Context, email string) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.DriverEmail == email }), nil
}

func (r *orderRepo) ListUnassignedReady(ctx context.Context) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool {
		return o.OrderStatus == models.OrderStatusReady && o.DriverEmail == ""
	}), nil
}

func (r *orderRepo) ListByStatus(ctx context.Context, status string) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool { return o.OrderStatus == status }), nil
}

func (r *orderRepo) ListScheduledDue(ctx context.Context, now time.Time) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool {
		return o.OrderStatus == models.OrderStatusScheduled && !o.ScheduledFor.After(now)
	}), nil
}

func (r *orderRepo) UpdateStatusIf(ctx context.Context, id, expected, next string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return false, models.ErrNotFound
	}
	if order.OrderStatus != expected {
		return false, nil
	}
	order.OrderStatus = next
	switch next {
	case models.OrderStatusDelivered:
		order.DeliveredAt = time.Now()
	case models.OrderStatusCancelled:
		order.CancelledAt = time.Now()
	}
	return true, nil
}

func (r *orderRepo) AssignDriverIf(ctx context.Context, id string, driver *models.Driver) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return false, models.ErrNotFound
	}
	if order.OrderStatus != models.OrderStatusReady || order.DriverEmail != "" {
		return false, nil
	}
	order.OrderStatus = models.OrderStatusPickedUp
	order.DriverID = driver.ID
	order.DriverEmail = driver.Email
	order.DriverName = driver.Name
	return true, nil
}

func (r *orderRepo) SetReviewed(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	order.IsReviewed = true
	return nil
}

type cartRepo struct{ s *state }

func (r *cartRepo) Create(ctx context.Context, cart *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.carts[cart.ID] = copyCart(cart)
	return nil
}

func (r *cartRepo) GetByCustomer(ctx context.Context, email string) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		if c.CustomerEmail == email {
			return copyCart(c), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *cartRepo) Update(ctx context.Context, cart *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[cart.ID]; !ok {
		return models.ErrNotFound
	}
	r.s.carts[cart.ID] = copyCart(cart)
	return nil
}

func (r *cartRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, id)
	return nil
}

type driverRepo struct{ s *state }

func (r *driverRepo) Create(ctx context.Context, driver *models.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := *driver
	r.s.drivers[driver.ID] = &d
	return nil
}

func (r *driverRepo) BulkCreate(ctx context.Context, drivers []*models.Driver) error {
	for _, d := range drivers {
		if err := r.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	driver, ok := r.s.drivers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	d := *driver
	return &d, nil
}

func (r *driverRepo) GetByEmail(ctx context.Context, email string) (*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, driver := range r.s.drivers {
		if driver.Email == email {
			d := *driver
			return &d, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *driverRepo) ListOnlineApproved(ctx context.Context) ([]*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Driver
	for _, driver := range r.s.drivers {
		if driver.CanDeliver() {
			d := *driver
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *driverRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	driver, ok := r.s.drivers[id]
	if !ok {
		return models.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (r *driverRepo) SetOnline(ctx context.Context, id string, online bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	driver, ok := r.s.drivers[id]
	if !ok {
		return models.ErrNotFound
	}
	driver.IsOnline = online
	return nil
}

func (r *driverRepo) SetBusyIf(ctx context.Context, id string, expected, next bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	driver, ok := r.s.drivers[id]
	if !ok {
		return false, models.ErrNotFound
	}
	if driver.IsBusy != expected {
		return false, nil
	}
	driver.IsBusy = next
	return true, nil
}

func (r *driverRepo) RecordDelivery(ctx context.Context, id string, payout int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	driver, ok := r.s.drivers[id]
	if !ok {
		return models.ErrNotFound
	}
	driver.IsBusy = false
	driver.TotalDeliveries++
	driver.TotalEarnings += payout
	return nil
}

func (r *driverRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.drivers), nil
}

type loyaltyRepo struct{ s *state }

func (r *loyaltyRepo) Create(ctx context.Context, account *models.LoyaltyPoints) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := *account
	r.s.loyalty[account.ID] = &a
	return nil
}

func (r *loyaltyRepo) GetByUser(ctx context.Context, email string) (*models.LoyaltyPoints, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, account := range r.s.loyalty {
		if account.UserEmail == email {
			a := *account
			return &a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *loyaltyRepo) UpdateBalanceIf(ctx context.Context, id string, expectedAvailable, newAvailable, newLifetime int64, tier string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	account, ok := r.s.loyalty[id]
	if !ok {
		return false, models.ErrNotFound
	}
	if account.AvailablePoints != expectedAvailable {
		return false, nil
	}
	account.AvailablePoints = newAvailable
	account.LifetimePoints = newLifetime
	account.Tier = tier
	account.UpdatedAt = time.Now()
	return true, nil
}

func (r *loyaltyRepo) AppendTransaction(ctx context.Context, tx *models.PointsTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := *tx
	r.s.transactions = append(r.s.transactions, &t)
	return nil
}

func (r *loyaltyRepo) ListTransactions(ctx context.Context, email string) ([]*models.PointsTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PointsTransaction
	for _, tx := range r.s.transactions {
		if tx.UserEmail == email {
			t := *tx
			out = append(out, &t)
		}
	}
	return out, nil
}

type restaurantRepo struct{ s *state }

func (r *restaurantRepo) Create(ctx context.Context, restaurant *models.Restaurant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rest := *restaurant
	r.s.restaurants[restaurant.ID] = &rest
	return nil
}

func (r *restaurantRepo) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	for _, rest := range restaurants {
		if err := r.Create(ctx, rest); err != nil {
			return err
		}
	}
	return nil
}

func (r *restaurantRepo) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	restaurant, ok := r.s.restaurants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	rest := *restaurant
	return &rest, nil
}

func (r *restaurantRepo) GetAll(ctx context.Context) (map[string]*models.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*models.Restaurant, len(r.s.restaurants))
	for id, restaurant := range r.s.restaurants {
		rest := *restaurant
		out[id] = &rest
	}
	return out, nil
}

func (r *restaurantRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.restaurants), nil
}

type menuItemRepo struct{ s *state }

func (r *menuItemRepo) Create(ctx context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it := *item
	r.s.menuItems[item.ID] = &it
	return nil
}

func (r *menuItemRepo) BulkCreate(ctx context.Context, items []*models.MenuItem) error {
	for _, it := range items {
		if err := r.Create(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *menuItemRepo) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.menuItems[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	it := *item
	return &it, nil
}

func (r *menuItemRepo) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.MenuItem
	for _, item := range r.s.menuItems {
		if item.RestaurantID == restaurantID {
			it := *item
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *menuItemRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.menuItems), nil
}

type notificationRepo struct{ s *state }

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	notif := *n
	r.s.notifications = append(r.s.notifications, &notif)
	return nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, email string) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.UserEmail == email {
			notif := *n
			out = append(out, &notif)
		}
	}
	return out, nil
}
