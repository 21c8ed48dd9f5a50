package announcements

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies an announcement for presentation.
type Type string

// Announcement types.
const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeEvent   Type = "event"
	TypeUrgent  Type = "urgent"
)

// Announcement is one site-wide banner with its targeting rules.
type Announcement struct {
	ID              uuid.UUID  `json:"id"`
	Type            Type       `json:"type"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Priority        int        `json:"priority"`
	Active          bool       `json:"active"`
	Dismissible     bool       `json:"dismissible"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	Audience        []string   `json:"audience"`
	Pages           []string   `json:"pages"`
	Devices         []string   `json:"devices"`
	MinVisits       int        `json:"min_visits"`
	AutoHideSeconds int        `json:"auto_hide_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AutoHide reports whether the announcement hides itself after display.
func (a Announcement) AutoHide() bool { return a.AutoHideSeconds > 0 }

// ViewContext describes one viewer at selection time.
type ViewContext struct {
	Now    time.Time
	Role   string
	Page   string
	Device string
	Visits int
}

// ErrNotFound indicates the announcement does not exist.
var ErrNotFound = errors.New("announcements: not found")
