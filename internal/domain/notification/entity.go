// internal/domain/notification/entity.go
package notification

import (
	"time"
)

type NotificationType string

const (
	TypeSubscription NotificationType = "subscription"
	TypeSystem       NotificationType = "system"
)

// Notification is an admin-facing event record. Billing writes one per
// successful subscription; delivery beyond the row (email, websocket push) is
// best effort.
type Notification struct {
	ID        int64                  `json:"id" db:"id"`
	Title     string                 `json:"title" db:"title"`
	Message   string                 `json:"message" db:"message"`
	Type      NotificationType       `json:"type" db:"type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}
