package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type DriverRepository struct {
	pool *pgxpool.Pool
}

func NewDriverRepository(pool *pgxpool.Pool) *DriverRepository {
	return &DriverRepository{pool: pool}
}

const driverColumns = `
        id, email, name, phone, vehicle_type, vehicle_number, city, status,
        is_online, is_busy, total_deliveries, total_earnings, average_rating,
        total_ratings, ST_X(current_location::geometry) as longitude,
        ST_Y(current_location::geometry) as latitude, joined_at
`

func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	query := `
        INSERT INTO drivers (
            id, email, name, phone, vehicle_type, vehicle_number, city, status,
            is_online, is_busy, total_deliveries, total_earnings, average_rating,
            total_ratings, current_location, joined_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            ST_SetSRID(ST_MakePoint($15, $16), 4326)::geography, $17
        )
    `
	_, err := r.pool.Exec(ctx, query,
		driver.ID,
		driver.Email,
		driver.Name,
		driver.Phone,
		driver.VehicleType,
		driver.VehicleNumber,
		driver.City,
		driver.Status,
		driver.IsOnline,
		driver.IsBusy,
		driver.TotalDeliveries,
		driver.TotalEarnings,
		driver.AverageRating,
		driver.TotalRatings,
		driver.CurrentLocation.Lon,
		driver.CurrentLocation.Lat,
		driver.JoinedAt,
	)
	return err
}

func (r *DriverRepository) BulkCreate(ctx context.Context, drivers []*models.Driver) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO drivers (
            id, email, name, phone, vehicle_type, vehicle_number, city, status,
            is_online, is_busy, total_deliveries, total_earnings, average_rating,
            total_ratings, current_location, joined_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            ST_SetSRID(ST_MakePoint($15, $16), 4326)::geography, $17
        )
    `
	for _, driver := range drivers {
		_, err = tx.Exec(ctx, query,
			driver.ID,
			driver.Email,
			driver.Name,
			driver.Phone,
			driver.VehicleType,
			driver.VehicleNumber,
			driver.City,
			driver.Status,
			driver.IsOnline,
			driver.IsBusy,
			driver.TotalDeliveries,
			driver.TotalEarnings,
			driver.AverageRating,
			driver.TotalRatings,
			driver.CurrentLocation.Lon,
			driver.CurrentLocation.Lat,
			driver.JoinedAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *DriverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.queryDriver(ctx, query, id)
}

func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE email = $1`
	return r.queryDriver(ctx, query, email)
}

func (r *DriverRepository) ListOnlineApproved(ctx context.Context) ([]*models.Driver, error) {
	query := `
        SELECT ` + driverColumns + `
        FROM drivers
        WHERE is_online = TRUE AND status = $1
        ORDER BY joined_at
    `
	rows, err := r.pool.Query(ctx, query, models.DriverStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

func (r *DriverRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE drivers SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *DriverRepository) SetOnline(ctx context.Context, id string, online bool) error {
	query := `UPDATE drivers SET is_online = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, online)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetBusyIf flips the busy flag only when it still holds the expected value,
// so two accepts racing for the same driver cannot both win.
func (r *DriverRepository) SetBusyIf(ctx context.Context, id string, expected, next bool) (bool, error) {
	query := `UPDATE drivers SET is_busy = $3 WHERE id = $1 AND is_busy = $2`
	tag, err := r.pool.Exec(ctx, query, id, expected, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DriverRepository) RecordDelivery(ctx context.Context, id string, payout int64) error {
	query := `
        UPDATE drivers
        SET
            is_busy = FALSE,
            total_deliveries = total_deliveries + 1,
            total_earnings = total_earnings + $2
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query, id, payout)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *DriverRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM drivers`).Scan(&count)
	return count, err
}

func (r *DriverRepository) queryDriver(ctx context.Context, query string, arg interface{}) (*models.Driver, error) {
	driver, err := scanDriver(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return driver, err
}

func scanDriver(row rowScanner) (*models.Driver, error) {
	driver := &models.Driver{}
	var lon, lat float64
	err := row.Scan(
		&driver.ID,
		&driver.Email,
		&driver.Name,
		&driver.Phone,
		&driver.VehicleType,
		&driver.VehicleNumber,
		&driver.City,
		&driver.Status,
		&driver.IsOnline,
		&driver.IsBusy,
		&driver.TotalDeliveries,
		&driver.TotalEarnings,
		&driver.AverageRating,
		&driver.TotalRatings,
		&lon,
		&lat,
		&driver.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	driver.CurrentLocation = models.Location{Lon: lon, Lat: lat}
	return driver, nil
}
