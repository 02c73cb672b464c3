// Package models holds the notification aggregate.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups notifications by origin.
type Category string

const (
	CategoryMatch  Category = "match"
	CategoryScan   Category = "scan"
	CategorySystem Category = "system"
)

// Notification is a persisted message for one user. Delivery over realtime
// channels is best effort; the stored row is the source of truth, so a user
// who missed the push still sees it on the next list.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Category  Category          `json:"category"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
