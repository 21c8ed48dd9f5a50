package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying freshly stored notifications.
const Channel = "console:notifications"

// StorePort defines persistence for in-app notifications.
type StorePort interface {
	Save(ctx context.Context, n Notification) (Notification, error)
	List(ctx context.Context, recipient string, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, recipient string, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipient string) error
	Delete(ctx context.Context, recipient string, id uuid.UUID) error
}

// Store persists notifications in PostgreSQL and publishes each saved record
// to the Redis channel so live feeds pick it up.
type Store struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	logger *slog.Logger
}

// NewStore constructs a Store. rdb may be nil; publishing is then skipped.
func NewStore(pool *pgxpool.Pool, rdb *redis.Client, logger *slog.Logger) *Store {
	return &Store{pool: pool, rdb: rdb, logger: logger}
}

const notificationColumns = `id, recipient, type, title, message, priority, metadata, read, created_at`

// Save upserts by id so that redelivery of the same notification cannot
// duplicate it, then publishes the stored record.
func (s *Store) Save(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return Notification{}, err
	}
	row := s.pool.QueryRow(ctx, `INSERT INTO notifications (id, recipient, type, title, message, priority, metadata, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, message = EXCLUDED.message, metadata = EXCLUDED.metadata
RETURNING `+notificationColumns,
		n.ID, n.Recipient, string(n.Type), n.Title, n.Message, string(n.Priority), meta)
	saved, err := scanNotification(row)
	if err != nil {
		return Notification{}, err
	}
	s.publish(ctx, saved)
	return saved, nil
}

func (s *Store) publish(ctx context.Context, n Notification) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err == nil {
		err = s.rdb.Publish(ctx, Channel, payload).Err()
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("publish notification", slog.String("id", n.ID.String()), slog.Any("error", err))
	}
}

// List returns a recipient's notifications, newest first.
func (s *Store) List(ctx context.Context, recipient string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`
	rows, err := s.pool.Query(ctx, query, recipient, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification as read.
func (s *Store) MarkRead(ctx context.Context, recipient string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient = $2`, id, recipient)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient.
func (s *Store) MarkAllRead(ctx context.Context, recipient string) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE recipient = $1 AND NOT read`, recipient)
	return err
}

// Delete removes one notification.
func (s *Store) Delete(ctx context.Context, recipient string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient = $2`, id, recipient)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneRead deletes read notifications older than the cutoff and reports how
// many rows went away. Used by the maintenance sweep.
func (s *Store) PruneRead(ctx context.Context, olderThanDays int) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE read AND created_at < NOW() - make_interval(days => $1)`, olderThanDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var (
		n    Notification
		meta []byte
	)
	err := row.Scan(&n.ID, &n.Recipient, &n.Type, &n.Title, &n.Message, &n.Priority, &meta, &n.Read, &n.CreatedAt)
	if err != nil {
		return Notification{}, err
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &n.Metadata)
	}
	return n, nil
}

var _ StorePort = (*Store)(nil)
