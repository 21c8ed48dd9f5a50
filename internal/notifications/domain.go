package notifications

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification for filtering and presentation.
type Type string

// Notification types emitted by the console.
const (
	TypeSubmission     Type = "submission"
	TypeStatusChange   Type = "status_change"
	TypePayment        Type = "payment"
	TypeDeliveryFailed Type = "delivery_failed"
	TypeSystem         Type = "system"
)

// Priority orders notifications in the feed.
type Priority string

// Priorities, low to high.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is one in-app message addressed to a recipient email.
type Notification struct {
	ID        uuid.UUID      `json:"id"`
	Recipient string         `json:"recipient"`
	Type      Type           `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ErrNotFound indicates the notification does not exist for the recipient.
var ErrNotFound = errors.New("notifications: not found")
