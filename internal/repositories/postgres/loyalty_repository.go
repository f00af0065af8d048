package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type LoyaltyRepository struct {
	pool *pgxpool.Pool
}

func NewLoyaltyRepository(pool *pgxpool.Pool) *LoyaltyRepository {
	return &LoyaltyRepository{pool: pool}
}

func (r *LoyaltyRepository) Create(ctx context.Context, account *models.LoyaltyPoints) error {
	query := `
        INSERT INTO loyalty_points (
            id, user_email, available_points, lifetime_points, tier, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.UserEmail,
		account.AvailablePoints,
		account.LifetimePoints,
		account.Tier,
		account.UpdatedAt,
	)
	return err
}

func (r *LoyaltyRepository) GetByUser(ctx context.Context, email string) (*models.LoyaltyPoints, error) {
	query := `
        SELECT id, user_email, available_points, lifetime_points, tier, updated_at
        FROM loyalty_points
        WHERE user_email = $1
    `
	account := &models.LoyaltyPoints{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&account.ID,
		&account.UserEmail,
		&account.AvailablePoints,
		&account.LifetimePoints,
		&account.Tier,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateBalanceIf is the compare-and-swap the ledger retries on: the write
// lands only when available_points has not moved since it was read.
func (r *LoyaltyRepository) UpdateBalanceIf(ctx context.Context, id string, expectedAvailable, newAvailable, newLifetime int64, tier string) (bool, error) {
	query := `
        UPDATE loyalty_points
        SET
            available_points = $3,
            lifetime_points = $4,
            tier = $5,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND available_points = $2
    `
	tag, err := r.pool.Exec(ctx, query, id, expectedAvailable, newAvailable, newLifetime, tier)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *LoyaltyRepository) AppendTransaction(ctx context.Context, tx *models.PointsTransaction) error {
	query := `
        INSERT INTO points_transactions (
            id, user_email, order_id, points, type, description, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.UserEmail,
		tx.OrderID,
		tx.Points,
		tx.Type,
		tx.Description,
		tx.CreatedAt,
	)
	return err
}

func (r *LoyaltyRepository) ListTransactions(ctx context.Context, email string) ([]*models.PointsTransaction, error) {
	query := `
        SELECT id, user_email, order_id, points, type, description, created_at
        FROM points_transactions
        WHERE user_email = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.PointsTransaction
	for rows.Next() {
		tx := &models.PointsTransaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.UserEmail,
			&tx.OrderID,
			&tx.Points,
			&tx.Type,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
