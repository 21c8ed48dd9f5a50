package announcements

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines persistence for announcements.
type RepositoryPort interface {
	List(ctx context.Context) ([]Announcement, error)
	ListActive(ctx context.Context) ([]Announcement, error)
	Get(ctx context.Context, id uuid.UUID) (Announcement, error)
	Create(ctx context.Context, a Announcement) (Announcement, error)
	Update(ctx context.Context, a Announcement) (Announcement, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const announcementColumns = `id, type, title, message, priority, active, dismissible, starts_at, ends_at, audience, pages, devices, min_visits, auto_hide_seconds, created_at, updated_at`

// List returns every announcement, newest first.
func (r *Repository) List(ctx context.Context) ([]Announcement, error) {
	return r.query(ctx, `SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC`)
}

// ListActive returns announcements with the active flag set. Time-window and
// targeting evaluation happens in SelectActive, not in SQL.
func (r *Repository) ListActive(ctx context.Context) ([]Announcement, error) {
	return r.query(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE active ORDER BY created_at DESC`)
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Announcement, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get fetches one announcement.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Announcement, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id)
	a, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Announcement{}, ErrNotFound
		}
		return Announcement{}, err
	}
	return a, nil
}

// Create inserts a new announcement.
func (r *Repository) Create(ctx context.Context, a Announcement) (Announcement, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Type == "" {
		a.Type = TypeInfo
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO announcements (id, type, title, message, priority, active, dismissible, starts_at, ends_at, audience, pages, devices, min_visits, auto_hide_seconds, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
RETURNING `+announcementColumns,
		a.ID, string(a.Type), a.Title, a.Message, a.Priority, a.Active, a.Dismissible,
		a.StartsAt, a.EndsAt, a.Audience, a.Pages, a.Devices, a.MinVisits, a.AutoHideSeconds)
	return scanAnnouncement(row)
}

// Update replaces an announcement's mutable fields.
func (r *Repository) Update(ctx context.Context, a Announcement) (Announcement, error) {
	row := r.pool.QueryRow(ctx, `UPDATE announcements SET type=$2, title=$3, message=$4, priority=$5, active=$6, dismissible=$7, starts_at=$8, ends_at=$9, audience=$10, pages=$11, devices=$12, min_visits=$13, auto_hide_seconds=$14, updated_at=NOW()
WHERE id=$1
RETURNING `+announcementColumns,
		a.ID, string(a.Type), a.Title, a.Message, a.Priority, a.Active, a.Dismissible,
		a.StartsAt, a.EndsAt, a.Audience, a.Pages, a.Devices, a.MinVisits, a.AutoHideSeconds)
	updated, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Announcement{}, ErrNotFound
		}
		return Announcement{}, err
	}
	return updated, nil
}

// Deactivate clears the active flag without deleting history.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE announcements SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an announcement.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateExpired clears the active flag on announcements whose end
// instant has passed. Used by the maintenance sweep.
func (r *Repository) DeactivateExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE announcements SET active = FALSE, updated_at = NOW() WHERE active AND ends_at IS NOT NULL AND ends_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanAnnouncement(row pgx.Row) (Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.Type, &a.Title, &a.Message, &a.Priority, &a.Active, &a.Dismissible,
		&a.StartsAt, &a.EndsAt, &a.Audience, &a.Pages, &a.Devices,
		&a.MinVisits, &a.AutoHideSeconds, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

var _ RepositoryPort = (*Repository)(nil)
