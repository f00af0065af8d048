package engine

import (
	"context"
	"log"
	"time"

	"github.com/lucsky/cuid"
	"github.com/smarteats/orderflow/internal/models"
	"github.com/smarteats/orderflow/internal/repositories"
)

// Notifier writes user notifications. Fire-and-forget: a failed write is
// logged and must never roll back the state transition that produced it.
type Notifier struct {
	repo repositories.NotificationRepository
}

func NewNotifier(repo repositories.NotificationRepository) *Notifier {
	return &Notifier{repo: repo}
}

func (n *Notifier) Notify(ctx context.Context, email, title, message, ntype string, data map[string]string) {
	if n == nil || n.repo == nil {
		return
	}
	err := n.repo.Create(ctx, &models.Notification{
		ID:        cuid.New(),
		UserEmail: email,
		Title:     title,
		Message:   message,
		Type:      ntype,
		Data:      data,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Printf("Failed to create notification for %s: %v", email, err)
	}
}
