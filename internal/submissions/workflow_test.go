package submissions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/shared"
)

type spyStore struct {
	subs       map[uuid.UUID]Submission
	failIDs    map[uuid.UUID]bool
	getCalls   int
	writeCalls int
}

func newSpyStore() *spyStore {
	return &spyStore{subs: make(map[uuid.UUID]Submission), failIDs: make(map[uuid.UUID]bool)}
}

func (s *spyStore) add(kind Kind, status Status, email string) uuid.UUID {
	id := uuid.New()
	s.subs[id] = Submission{ID: id, Kind: kind, Status: status, Email: email}
	return id
}

func (s *spyStore) Get(ctx context.Context, kind Kind, id uuid.UUID) (Submission, error) {
	s.getCalls++
	sub, ok := s.subs[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (s *spyStore) List(ctx context.Context, kind Kind, f Filter) ([]Submission, int, error) {
	var out []Submission
	for _, sub := range s.subs {
		if sub.Kind == kind {
			out = append(out, sub)
		}
	}
	return out, len(out), nil
}

func (s *spyStore) Insert(ctx context.Context, sub Submission) (Submission, error) {
	s.writeCalls++
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.subs[sub.ID] = sub
	return sub, nil
}

func (s *spyStore) UpdateStatus(ctx context.Context, kind Kind, id uuid.UUID, status Status) error {
	s.writeCalls++
	if s.failIDs[id] {
		return errors.New("write rejected")
	}
	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	s.subs[id] = sub
	return nil
}

func (s *spyStore) CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, sub := range s.subs {
		if sub.Kind == kind {
			counts[sub.Status]++
		}
	}
	return counts, nil
}

type spyNotifier struct {
	received []Submission
	changed  []StatusEvent
	payments []StatusEvent
}

func (n *spyNotifier) SubmissionReceived(ctx context.Context, sub Submission) {
	n.received = append(n.received, sub)
}

func (n *spyNotifier) StatusChanged(ctx context.Context, event StatusEvent) {
	n.changed = append(n.changed, event)
}

func (n *spyNotifier) PaymentCompleted(ctx context.Context, event StatusEvent) {
	n.payments = append(n.payments, event)
}

type spyTrail struct{ entries []shared.ReviewEntry }

func (t *spyTrail) Record(ctx context.Context, entry shared.ReviewEntry) error {
	t.entries = append(t.entries, entry)
	return nil
}

func (t *spyTrail) List(ctx context.Context, formKind string, ref uuid.UUID) ([]shared.ReviewEntry, error) {
	var out []shared.ReviewEntry
	for _, e := range t.entries {
		if e.FormKind == formKind && e.RefID == ref {
			out = append(out, e)
		}
	}
	return out, nil
}

type spyAudit struct{ logs []shared.AuditLog }

func (a *spyAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func manager() *access.User {
	return &access.User{ID: 7, Email: "membership@benirage.org"}
}

func member() *access.User {
	return &access.User{ID: 9, Email: "someone@example.com", Role: "member"}
}

func newTestWorkflow(store *spyStore) (*Workflow, *spyNotifier, *spyTrail, *spyAudit) {
	notifier := &spyNotifier{}
	trail := &spyTrail{}
	audit := &spyAudit{}
	return NewWorkflow(store, trail, audit, notifier, nil), notifier, trail, audit
}

func TestChangeStatusUnauthorizedPerformsZeroWrites(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindMembership, StatusPending, "a@example.com")
	wf, notifier, _, _ := newTestWorkflow(store)

	_, err := wf.ChangeStatus(context.Background(), member(), KindMembership, id, StatusApproved, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Zero(t, store.getCalls)
	require.Zero(t, store.writeCalls)
	require.Empty(t, notifier.changed)

	_, err = wf.ChangeStatus(context.Background(), nil, KindMembership, id, StatusApproved, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Zero(t, store.writeCalls)
}

func TestChangeStatusRejectsUnknownStatusBeforeStore(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindVolunteer, StatusPending, "v@example.com")
	wf, _, _, _ := newTestWorkflow(store)

	_, err := wf.ChangeStatus(context.Background(), manager(), KindVolunteer, id, Status("archived"), "")
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Zero(t, store.getCalls)
	require.Zero(t, store.writeCalls)
}

func TestChangeStatusAcceptsEveryValidStatus(t *testing.T) {
	statuses := []Status{
		StatusPending, StatusUnderReview, StatusApproved,
		StatusRejected, StatusAdditionalInfo, StatusCompleted,
	}
	for _, next := range statuses {
		store := newSpyStore()
		id := store.add(KindPartnership, Status("seed"), "p@example.com")
		wf, _, _, _ := newTestWorkflow(store)

		sub, err := wf.ChangeStatus(context.Background(), manager(), KindPartnership, id, next, "")
		require.NoError(t, err, "status %s", next)
		require.Equal(t, next, sub.Status)
	}
}

func TestChangeStatusNotifiesOnceWithOldAndNewStatus(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindMembership, StatusPending, "a@example.com")
	wf, notifier, trail, audit := newTestWorkflow(store)

	_, err := wf.ChangeStatus(context.Background(), manager(), KindMembership, id, StatusUnderReview, "checking references")
	require.NoError(t, err)

	require.Len(t, notifier.changed, 1)
	event := notifier.changed[0]
	require.Equal(t, StatusPending, event.OldStatus)
	require.Equal(t, StatusUnderReview, event.NewStatus)
	require.Equal(t, "a@example.com", event.Email)
	require.Empty(t, notifier.payments)

	require.Len(t, trail.entries, 1)
	require.Equal(t, "checking references", trail.entries[0].Note)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "submission.status_change", audit.logs[0].Action)
}

func TestChangeStatusWithoutEmailSkipsNotifier(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindDonation, StatusPending, "")
	wf, notifier, trail, audit := newTestWorkflow(store)

	sub, err := wf.ChangeStatus(context.Background(), manager(), KindDonation, id, StatusCompleted, "")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, sub.Status)

	require.Empty(t, notifier.changed, "no recipient means no status notification")
	require.Empty(t, notifier.payments)
	require.Len(t, trail.entries, 1, "history is still recorded")
	require.Len(t, audit.logs, 1)
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindContact, StatusApproved, "c@example.com")
	wf, notifier, trail, _ := newTestWorkflow(store)

	_, err := wf.ChangeStatus(context.Background(), manager(), KindContact, id, StatusApproved, "")
	require.NoError(t, err)
	require.Empty(t, notifier.changed)
	require.Empty(t, trail.entries)
}

func TestCompletedDonationEmitsPaymentEvent(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindDonation, StatusPending, "d@example.com")
	wf, notifier, _, _ := newTestWorkflow(store)

	_, err := wf.ChangeStatus(context.Background(), manager(), KindDonation, id, StatusCompleted, "")
	require.NoError(t, err)
	require.Len(t, notifier.payments, 1)
	require.Equal(t, StatusCompleted, notifier.payments[0].NewStatus)

	// completing a non-donation must not emit a payment event
	other := store.add(KindMembership, StatusPending, "m@example.com")
	_, err = wf.ChangeStatus(context.Background(), manager(), KindMembership, other, StatusCompleted, "")
	require.NoError(t, err)
	require.Len(t, notifier.payments, 1)
}

func TestReviewsReturnHistoryInOrder(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindMembership, StatusPending, "a@example.com")
	wf, _, _, _ := newTestWorkflow(store)

	ctx := context.Background()
	_, err := wf.ChangeStatus(ctx, manager(), KindMembership, id, StatusUnderReview, "first look")
	require.NoError(t, err)
	_, err = wf.ChangeStatus(ctx, manager(), KindMembership, id, StatusApproved, "references fine")
	require.NoError(t, err)

	entries, err := wf.Reviews(ctx, manager(), KindMembership, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, string(StatusPending), entries[0].OldStatus)
	require.Equal(t, string(StatusUnderReview), entries[0].NewStatus)
	require.Equal(t, string(StatusApproved), entries[1].NewStatus)
	require.Equal(t, "references fine", entries[1].Note)
}

func TestReviewsRequireManageForms(t *testing.T) {
	store := newSpyStore()
	id := store.add(KindMembership, StatusPending, "a@example.com")
	wf, _, _, _ := newTestWorkflow(store)

	_, err := wf.Reviews(context.Background(), member(), KindMembership, id)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestBulkChangeStatusReportsFailingID(t *testing.T) {
	store := newSpyStore()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, store.add(KindVolunteer, StatusPending, "v@example.com"))
	}
	failing := ids[2]
	store.failIDs[failing] = true
	wf, notifier, _, _ := newTestWorkflow(store)

	result, err := wf.BulkChangeStatus(context.Background(), manager(), KindVolunteer, ids, StatusApproved, "")
	require.NoError(t, err)
	require.Equal(t, 4, result.SuccessCount())
	require.Len(t, result.Failed, 1)
	require.Equal(t, failing, result.Failed[0].ID)
	require.NotEmpty(t, result.Failed[0].Reason)
	require.Len(t, notifier.changed, 4)

	for _, id := range result.Succeeded {
		require.Equal(t, StatusApproved, store.subs[id].Status)
	}
	require.Equal(t, StatusPending, store.subs[failing].Status)
}

func TestBulkChangeStatusUnauthorizedTouchesNothing(t *testing.T) {
	store := newSpyStore()
	ids := []uuid.UUID{store.add(KindMembership, StatusPending, "a@example.com")}
	wf, _, _, _ := newTestWorkflow(store)

	_, err := wf.BulkChangeStatus(context.Background(), member(), KindMembership, ids, StatusApproved, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Zero(t, store.writeCalls)
}

func TestSubmitRecordsPendingAndAnnounces(t *testing.T) {
	store := newSpyStore()
	wf, notifier, _, _ := newTestWorkflow(store)

	sub, err := wf.Submit(context.Background(), KindPhilosophyCafe, "guest@example.com", map[string]any{"topic": "ethics"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, sub.Status)
	require.NotEqual(t, uuid.Nil, sub.ID)
	require.Len(t, notifier.received, 1)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	store := newSpyStore()
	wf, _, _, _ := newTestWorkflow(store)

	_, err := wf.Submit(context.Background(), Kind("newsletter"), "guest@example.com", nil)
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = wf.Submit(context.Background(), KindContact, "not-an-email", nil)
	require.Error(t, err)
	require.Zero(t, store.writeCalls)
}
