package access

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benirage/console/internal/shared"
)

// Repository loads identity records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadUser fetches a user with their stored permission lists.
func (r *Repository) LoadUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT u.id, u.email, COALESCE(u.role, ''),
COALESCE(u.form_access, '{}'), COALESCE(u.content_access, '{}'), COALESCE(u.admin_access, '{}')
FROM users u WHERE u.id = $1 AND u.is_active`, id)

	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Role, &user.FormAccess, &user.ContentAccess, &user.AdminAccess); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ UserLoader = (*Repository)(nil)
