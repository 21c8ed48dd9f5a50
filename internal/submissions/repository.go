package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter narrows a submission listing. Zero values mean "no constraint".
type Filter struct {
	Search  string
	Status  Status
	From    time.Time
	To      time.Time
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

// sortColumns whitelists sortable fields per listing.
var sortColumns = map[string]string{
	"submission_date": "submission_date",
	"email":           "email",
	"status":          "status",
	"updated_at":      "updated_at",
}

// StorePort defines data access for form submissions.
type StorePort interface {
	Get(ctx context.Context, kind Kind, id uuid.UUID) (Submission, error)
	List(ctx context.Context, kind Kind, f Filter) ([]Submission, int, error)
	Insert(ctx context.Context, sub Submission) (Submission, error)
	UpdateStatus(ctx context.Context, kind Kind, id uuid.UUID, status Status) error
	CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error)
}

// Store provides PostgreSQL backed persistence over the per-kind tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const submissionColumns = `id, email, status, submission_date, updated_at, payload`

// Get fetches one submission from the kind's table.
func (s *Store) Get(ctx context.Context, kind Kind, id uuid.UUID) (Submission, error) {
	if !kind.Valid() {
		return Submission{}, ErrInvalidKind
	}
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, submissionColumns, kind.Table()), id)
	sub, err := scanSubmission(row, kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return sub, nil
}

// List returns a filtered, sorted, paginated page plus the total match count.
func (s *Store) List(ctx context.Context, kind Kind, f Filter) ([]Submission, int, error) {
	if !kind.Valid() {
		return nil, 0, ErrInvalidKind
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		where = append(where, `(email ILIKE `+arg("%"+f.Search+"%")+` OR payload::text ILIKE `+arg("%"+f.Search+"%")+`)`)
	}
	if f.Status != "" {
		where = append(where, `status = `+arg(string(f.Status)))
	}
	if !f.From.IsZero() {
		where = append(where, `submission_date >= `+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, `submission_date <= `+arg(f.To))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, kind.Table(), clause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "submission_date"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s %s LIMIT %s OFFSET %s`,
		submissionColumns, kind.Table(), clause, col, dir, arg(perPage), arg(offset))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows, kind)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, sub)
	}
	return subs, total, rows.Err()
}

// Insert stores a new intake record with status pending.
func (s *Store) Insert(ctx context.Context, sub Submission) (Submission, error) {
	if !sub.Kind.Valid() {
		return Submission{}, ErrInvalidKind
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, email, status, submission_date, updated_at, payload)
VALUES ($1, $2, $3, NOW(), NOW(), $4)
RETURNING %s`, sub.Kind.Table(), submissionColumns),
		sub.ID, sub.Email, string(sub.Status), sub.Payload)
	return scanSubmission(row, sub.Kind)
}

// UpdateStatus changes one submission's status. Returns ErrNotFound when the
// id does not exist in the kind's table.
func (s *Store) UpdateStatus(ctx context.Context, kind Kind, id uuid.UUID, status Status) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, kind.Table()),
		id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns per-status counts for one kind's table.
func (s *Store) CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT status, COUNT(*) FROM %s GROUP BY status`, kind.Table()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

func scanSubmission(row pgx.Row, kind Kind) (Submission, error) {
	var sub Submission
	err := row.Scan(&sub.ID, &sub.Email, &sub.Status, &sub.SubmittedAt, &sub.UpdatedAt, &sub.Payload)
	sub.Kind = kind
	return sub, err
}

var _ StorePort = (*Store)(nil)
