package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smarteats/orderflow/internal/models"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO notifications (
            id, user_email, title, message, type, data, is_read, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err = r.pool.Exec(ctx, query,
		n.ID,
		n.UserEmail,
		n.Title,
		n.Message,
		n.Type,
		data,
		n.IsRead,
		n.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, email string) ([]*models.Notification, error) {
	query := `
        SELECT id, user_email, title, message, type, data, is_read, created_at
        FROM notifications
        WHERE user_email = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var data []byte
		err := rows.Scan(
			&n.ID,
			&n.UserEmail,
			&n.Title,
			&n.Message,
			&n.Type,
			&data,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
