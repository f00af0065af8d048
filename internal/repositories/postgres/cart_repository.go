package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO carts (
            id, customer_email, restaurant_id, restaurant_name,
            items, subtotal, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err = r.pool.Exec(ctx, query,
		cart.ID,
		cart.CustomerEmail,
		cart.RestaurantID,
		cart.RestaurantName,
		items,
		cart.Subtotal,
		cart.UpdatedAt,
	)
	return err
}

func (r *CartRepository) GetByCustomer(ctx context.Context, email string) (*models.Cart, error) {
	query := `
        SELECT id, customer_email, restaurant_id, restaurant_name,
               items, subtotal, updated_at
        FROM carts
        WHERE customer_email = $1
    `
	cart := &models.Cart{}
	var items []byte
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&cart.ID,
		&cart.CustomerEmail,
		&cart.RestaurantID,
		&cart.RestaurantName,
		&items,
		&cart.Subtotal,
		&cart.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *CartRepository) Update(ctx context.Context, cart *models.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}

	query := `
        UPDATE carts
        SET items = $2, subtotal = $3, updated_at = $4
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query, cart.ID, items, cart.Subtotal, cart.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}
