package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewEntry represents a single entry in a submission's review trail.
type ReviewEntry struct {
	ID        int64
	FormKind  string
	RefID     uuid.UUID
	ActorID   int64
	OldStatus string
	NewStatus string
	Note      string
	At        time.Time
}

// ReviewTrail persists the status-change history of form submissions.
type ReviewTrail struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewReviewTrail constructs a ReviewTrail.
func NewReviewTrail(pool *pgxpool.Pool, logger *slog.Logger) *ReviewTrail {
	return &ReviewTrail{pool: pool, logger: logger}
}

// Record writes a review entry to the database.
func (t *ReviewTrail) Record(ctx context.Context, entry ReviewEntry) error {
	if t == nil {
		return errors.New("review trail not initialised")
	}
	if entry.FormKind == "" {
		return errors.New("review form kind required")
	}
	if entry.RefID == uuid.Nil {
		return errors.New("review ref id required")
	}
	if entry.NewStatus == "" {
		return errors.New("review new status required")
	}
	_, err := t.pool.Exec(ctx, `INSERT INTO submission_reviews (form_kind, ref_id, actor_id, old_status, new_status, note, at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		entry.FormKind, entry.RefID, entry.ActorID, entry.OldStatus, entry.NewStatus, entry.Note, nullableTime(entry.At))
	if err != nil && t.logger != nil {
		t.logger.Error("record review entry", slog.Any("error", err))
	}
	return err
}

// List returns the review trail for one submission, oldest first.
func (t *ReviewTrail) List(ctx context.Context, formKind string, ref uuid.UUID) ([]ReviewEntry, error) {
	if t == nil {
		return nil, errors.New("review trail not initialised")
	}
	rows, err := t.pool.Query(ctx, `SELECT id, form_kind, ref_id, actor_id, old_status, new_status, note, at
FROM submission_reviews WHERE form_kind=$1 AND ref_id=$2 ORDER BY at ASC`, formKind, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ReviewEntry
	for rows.Next() {
		var e ReviewEntry
		if err := rows.Scan(&e.ID, &e.FormKind, &e.RefID, &e.ActorID, &e.OldStatus, &e.NewStatus, &e.Note, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
