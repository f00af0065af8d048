package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

const restaurantInsert = `
        INSERT INTO restaurants (
            id, name, email, phone, cuisines, address, rating, is_open,
            avg_prep_time, location
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9,
            ST_SetSRID(ST_MakePoint($10, $11), 4326)::geography
        )
`

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	_, err := r.pool.Exec(ctx, restaurantInsert, restaurantArgs(restaurant)...)
	return err
}

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, restaurant := range restaurants {
		if _, err := tx.Exec(ctx, restaurantInsert, restaurantArgs(restaurant)...); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func restaurantArgs(restaurant *models.Restaurant) []interface{} {
	return []interface{}{
		restaurant.ID,
		restaurant.Name,
		restaurant.Email,
		restaurant.Phone,
		restaurant.Cuisines,
		restaurant.Address,
		restaurant.Rating,
		restaurant.IsOpen,
		restaurant.AvgPrepTime,
		restaurant.Location.Lon,
		restaurant.Location.Lat,
	}
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	query := `
        SELECT id, name, email, phone, cuisines, address, rating, is_open,
               avg_prep_time, ST_X(location::geometry) as longitude,
               ST_Y(location::geometry) as latitude
        FROM restaurants
        WHERE id = $1
    `
	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return restaurant, err
}

func (r *RestaurantRepository) GetAll(ctx context.Context) (map[string]*models.Restaurant, error) {
	query := `
        SELECT id, name, email, phone, cuisines, address, rating, is_open,
               avg_prep_time, ST_X(location::geometry) as longitude,
               ST_Y(location::geometry) as latitude
        FROM restaurants
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := make(map[string]*models.Restaurant)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants[restaurant.ID] = restaurant
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	menuQuery := `SELECT id, restaurant_id FROM menu_items`
	menuRows, err := r.pool.Query(ctx, menuQuery)
	if err != nil {
		return nil, err
	}
	defer menuRows.Close()

	for menuRows.Next() {
		var itemID, restaurantID string
		if err := menuRows.Scan(&itemID, &restaurantID); err != nil {
			return nil, err
		}
		if restaurant, ok := restaurants[restaurantID]; ok {
			restaurant.MenuItems = append(restaurant.MenuItems, itemID)
		}
	}
	return restaurants, menuRows.Err()
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&count)
	return count, err
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	var lon, lat float64
	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Email,
		&restaurant.Phone,
		&restaurant.Cuisines,
		&restaurant.Address,
		&restaurant.Rating,
		&restaurant.IsOpen,
		&restaurant.AvgPrepTime,
		&lon,
		&lat,
	)
	if err != nil {
		return nil, err
	}
	restaurant.Location = models.Location{Lon: lon, Lat: lat}
	return restaurant, nil
}
