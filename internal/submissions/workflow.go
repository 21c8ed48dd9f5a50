package submissions

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/shared"
)

// StatusEvent describes one status transition for downstream dispatch.
type StatusEvent struct {
	Kind      Kind
	ID        uuid.UUID
	Email     string
	OldStatus Status
	NewStatus Status
	Note      string
	ActorID   int64
}

// Notifier receives workflow events. Implementations must not block the
// caller on delivery; failures stay inside the notifier.
type Notifier interface {
	SubmissionReceived(ctx context.Context, sub Submission)
	StatusChanged(ctx context.Context, event StatusEvent)
	PaymentCompleted(ctx context.Context, event StatusEvent)
}

// ReviewRecorder persists and reads back status-change history.
type ReviewRecorder interface {
	Record(ctx context.Context, entry shared.ReviewEntry) error
	List(ctx context.Context, formKind string, ref uuid.UUID) ([]shared.ReviewEntry, error)
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Workflow coordinates submission status transitions. Authorization is
// checked before any storage access; an unauthorized call performs zero
// writes.
type Workflow struct {
	store    StorePort
	trail    ReviewRecorder
	audit    AuditRecorder
	notifier Notifier
	logger   *slog.Logger
	validate *validator.Validate
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(store StorePort, trail ReviewRecorder, audit AuditRecorder, notifier Notifier, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:    store,
		trail:    trail,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		validate: validator.New(),
	}
}

type intakeInput struct {
	Email string `validate:"required,email"`
}

// Submit records a new public intake with status pending and announces it.
func (w *Workflow) Submit(ctx context.Context, kind Kind, email string, payload map[string]any) (Submission, error) {
	if !kind.Valid() {
		return Submission{}, ErrInvalidKind
	}
	if err := w.validate.Struct(intakeInput{Email: email}); err != nil {
		return Submission{}, err
	}
	sub, err := w.store.Insert(ctx, Submission{
		Kind:    kind,
		Email:   email,
		Status:  StatusPending,
		Payload: payload,
	})
	if err != nil {
		return Submission{}, err
	}
	if w.notifier != nil {
		w.notifier.SubmissionReceived(ctx, sub)
	}
	return sub, nil
}

// Get fetches one submission for a manager.
func (w *Workflow) Get(ctx context.Context, actor *access.User, kind Kind, id uuid.UUID) (Submission, error) {
	if !authorized(actor) {
		return Submission{}, ErrUnauthorized
	}
	return w.store.Get(ctx, kind, id)
}

// List returns a filtered page for a manager.
func (w *Workflow) List(ctx context.Context, actor *access.User, kind Kind, f Filter) ([]Submission, int, error) {
	if !authorized(actor) {
		return nil, 0, ErrUnauthorized
	}
	return w.store.List(ctx, kind, f)
}

// Counts returns per-status counts for a manager overview.
func (w *Workflow) Counts(ctx context.Context, actor *access.User, kind Kind) (map[Status]int, error) {
	if !authorized(actor) {
		return nil, ErrUnauthorized
	}
	return w.store.CountByStatus(ctx, kind)
}

// Reviews returns the status-change history of one submission, oldest first.
func (w *Workflow) Reviews(ctx context.Context, actor *access.User, kind Kind, id uuid.UUID) ([]shared.ReviewEntry, error) {
	if !authorized(actor) {
		return nil, ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if w.trail == nil {
		return nil, nil
	}
	return w.trail.List(ctx, string(kind), id)
}

// ChangeStatus moves one submission to a new status. The status value is
// validated before the store is touched. On success the review trail and
// audit log are appended and the notifier is invoked once; recorder
// failures are logged, never returned.
func (w *Workflow) ChangeStatus(ctx context.Context, actor *access.User, kind Kind, id uuid.UUID, status Status, note string) (Submission, error) {
	if !authorized(actor) {
		return Submission{}, ErrUnauthorized
	}
	if !status.Valid() {
		return Submission{}, ErrInvalidStatus
	}
	if !kind.Valid() {
		return Submission{}, ErrInvalidKind
	}

	current, err := w.store.Get(ctx, kind, id)
	if err != nil {
		return Submission{}, err
	}
	if current.Status == status {
		return current, nil
	}
	if err := w.store.UpdateStatus(ctx, kind, id, status); err != nil {
		return Submission{}, err
	}

	old := current.Status
	current.Status = status
	w.record(ctx, actor, kind, id, old, status, note)

	event := StatusEvent{
		Kind:      kind,
		ID:        id,
		Email:     current.Email,
		OldStatus: old,
		NewStatus: status,
		Note:      note,
		ActorID:   actor.ID,
	}
	// Records without a contact address have nobody to notify.
	if w.notifier != nil && current.Email != "" {
		w.notifier.StatusChanged(ctx, event)
		if kind == KindDonation && status == StatusCompleted {
			w.notifier.PaymentCompleted(ctx, event)
		}
	}
	return current, nil
}

// BulkChangeStatus applies one status to many ids, one write per id. There
// is no shared transaction; a failing id is reported and the rest proceed.
func (w *Workflow) BulkChangeStatus(ctx context.Context, actor *access.User, kind Kind, ids []uuid.UUID, status Status, note string) (BulkResult, error) {
	if !authorized(actor) {
		return BulkResult{}, ErrUnauthorized
	}
	if !status.Valid() {
		return BulkResult{}, ErrInvalidStatus
	}
	if !kind.Valid() {
		return BulkResult{}, ErrInvalidKind
	}

	var result BulkResult
	for _, id := range ids {
		if _, err := w.ChangeStatus(ctx, actor, kind, id, status, note); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func (w *Workflow) record(ctx context.Context, actor *access.User, kind Kind, id uuid.UUID, old, next Status, note string) {
	if w.trail != nil {
		err := w.trail.Record(ctx, shared.ReviewEntry{
			FormKind:  string(kind),
			RefID:     id,
			ActorID:   actor.ID,
			OldStatus: string(old),
			NewStatus: string(next),
			Note:      note,
		})
		if err != nil && w.logger != nil {
			w.logger.Warn("record review entry", slog.Any("error", err))
		}
	}
	if w.audit != nil {
		err := w.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.ID,
			Action:   "submission.status_change",
			Entity:   string(kind),
			EntityID: id.String(),
			Meta:     map[string]any{"old_status": string(old), "new_status": string(next)},
		})
		if err != nil && w.logger != nil {
			w.logger.Warn("record audit entry", slog.Any("error", err))
		}
	}
}

func authorized(actor *access.User) bool {
	if actor == nil {
		return false
	}
	return access.ResolveCapabilities(actor).CanManageForms
}
