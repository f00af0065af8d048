package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `
        id, order_number, customer_email, customer_name, restaurant_id,
        restaurant_name, items, subtotal, delivery_fee, taxes, discount,
        points_earned, points_redeemed, total_amount, payment_method,
        payment_status, order_status, is_scheduled, scheduled_for,
        delivery_address, delivery_latitude, delivery_longitude,
        delivery_instructions, driver_id, driver_email, driver_name,
        is_reviewed, placed_at, delivered_at, cancelled_at
`

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO orders (` + orderColumns + `
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
            $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
            $21, $22, $23, $24, $25, $26, $27, $28, $29, $30
        )
    `

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.CustomerEmail,
		order.CustomerName,
		order.RestaurantID,
		order.RestaurantName,
		items,
		order.Subtotal,
		order.DeliveryFee,
		order.Taxes,
		order.Discount,
		order.PointsEarned,
		order.PointsRedeemed,
		order.TotalAmount,
		order.PaymentMethod,
		order.PaymentStatus,
		order.OrderStatus,
		order.IsScheduled,
		nullTime(order.ScheduledFor),
		order.DeliveryAddress,
		order.DeliveryLatitude,
		order.DeliveryLongitude,
		order.Instructions,
		order.DriverID,
		order.DriverEmail,
		order.DriverName,
		order.IsReviewed,
		order.PlacedAt,
		nullTime(order.DeliveredAt),
		nullTime(order.CancelledAt),
	)
	return err
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return order, err
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, email string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_email = $1 ORDER BY placed_at DESC`
	return r.queryOrders(ctx, query, email)
}

func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 ORDER BY placed_at DESC`
	return r.queryOrders(ctx, query, restaurantID)
}

func (r *OrderRepository) ListByDriver(ctx context.Context, email string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE driver_email = $1 ORDER BY placed_at DESC`
	return r.queryOrders(ctx, query, email)
}

func (r *OrderRepository) ListUnassignedReady(ctx context.Context) ([]*models.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE order_status = $1 AND driver_email = ''
        ORDER BY placed_at
    `
	return r.queryOrders(ctx, query, models.OrderStatusReady)
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_status = $1 ORDER BY placed_at`
	return r.queryOrders(ctx, query, status)
}

func (r *OrderRepository) ListScheduledDue(ctx context.Context, now time.Time) ([]*models.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE order_status = $1 AND scheduled_for <= $2
        ORDER BY scheduled_for
    `
	return r.queryOrders(ctx, query, models.OrderStatusScheduled, now)
}

// UpdateStatusIf is the optimistic-concurrency guard: the write lands only
// when the row is still in the expected status.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id, expected, next string) (bool, error) {
	query := `
        UPDATE orders
        SET
            order_status = $3,
            delivered_at = CASE WHEN $3 = 'delivered' THEN CURRENT_TIMESTAMP ELSE delivered_at END,
            cancelled_at = CASE WHEN $3 = 'cancelled' THEN CURRENT_TIMESTAMP ELSE cancelled_at END,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND order_status = $2
    `
	tag, err := r.pool.Exec(ctx, query, id, expected, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AssignDriverIf claims a ready, unassigned order for the driver in a single
// conditional write.
func (r *OrderRepository) AssignDriverIf(ctx context.Context, id string, driver *models.Driver) (bool, error) {
	query := `
        UPDATE orders
        SET
            order_status = $5,
            driver_id = $2,
            driver_email = $3,
            driver_name = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND order_status = $6 AND driver_email = ''
    `
	tag, err := r.pool.Exec(ctx, query, id,
		driver.ID, driver.Email, driver.Name,
		models.OrderStatusPickedUp, models.OrderStatusReady)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) SetReviewed(ctx context.Context, id string) error {
	query := `UPDATE orders SET is_reviewed = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var items []byte
	var scheduledFor, deliveredAt, cancelledAt *time.Time

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.CustomerEmail,
		&order.CustomerName,
		&order.RestaurantID,
		&order.RestaurantName,
		&items,
		&order.Subtotal,
		&order.DeliveryFee,
		&order.Taxes,
		&order.Discount,
		&order.PointsEarned,
		&order.PointsRedeemed,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.OrderStatus,
		&order.IsScheduled,
		&scheduledFor,
		&order.DeliveryAddress,
		&order.DeliveryLatitude,
		&order.DeliveryLongitude,
		&order.Instructions,
		&order.DriverID,
		&order.DriverEmail,
		&order.DriverName,
		&order.IsReviewed,
		&order.PlacedAt,
		&deliveredAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}
	if scheduledFor != nil {
		order.ScheduledFor = *scheduledFor
	}
	if deliveredAt != nil {
		order.DeliveredAt = *deliveredAt
	}
	if cancelledAt != nil {
		order.CancelledAt = *cancelledAt
	}
	return order, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
