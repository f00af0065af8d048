package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	query := `
        INSERT INTO menu_items (
            id, restaurant_id, name, description, price, category,
            is_veg, is_available, image_url, popularity
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.RestaurantID,
		item.Name,
		item.Description,
		item.Price,
		item.Category,
		item.IsVeg,
		item.IsAvailable,
		item.ImageURL,
		item.Popularity,
	)
	return err
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, items []*models.MenuItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{
			"id", "restaurant_id", "name", "description", "price",
			"category", "is_veg", "is_available", "image_url", "popularity",
		},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			return []interface{}{
				items[i].ID,
				items[i].RestaurantID,
				items[i].Name,
				items[i].Description,
				items[i].Price,
				items[i].Category,
				items[i].IsVeg,
				items[i].IsAvailable,
				items[i].ImageURL,
				items[i].Popularity,
			}, nil
		}),
	)
	return err
}

func (r *MenuItemRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	query := `
        SELECT id, restaurant_id, name, description, price, category,
               is_veg, is_available, image_url, popularity
        FROM menu_items
        WHERE id = $1
    `
	item := &models.MenuItem{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.RestaurantID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Category,
		&item.IsVeg,
		&item.IsAvailable,
		&item.ImageURL,
		&item.Popularity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MenuItemRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	query := `
        SELECT id, restaurant_id, name, description, price, category,
               is_veg, is_available, image_url, popularity
        FROM menu_items
        WHERE restaurant_id = $1
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item := &models.MenuItem{}
		err := rows.Scan(
			&item.ID,
			&item.RestaurantID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.Category,
			&item.IsVeg,
			&item.IsAvailable,
			&item.ImageURL,
			&item.Popularity,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count)
	return count, err
}
