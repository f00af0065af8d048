package models

import "time"

// Notification is a fire-and-forget message to a user. Delivery failure is
// logged and never rolls back the transition that produced it.
type Notification struct {
	ID        string            `json:"id"`
	UserEmail string            `json:"user_email"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      string            `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}
