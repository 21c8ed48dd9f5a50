package roles

import (
	"errors"
	"time"
)

// Role represents a named capability bundle assignable to users.
type Role struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Permissions  []string  `json:"permissions"`
	ParentRoleID *int64    `json:"parent_role_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsSystemRole bool      `json:"is_system_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the requested role does not exist.
	ErrNotFound = errors.New("roles: not found")
	// ErrSystemRole indicates an attempt to delete a system role.
	ErrSystemRole = errors.New("roles: system roles cannot be deleted")
)
