package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/benirage/console/internal/submissions"
)

type memoryStore struct {
	saved []Notification
}

func (s *memoryStore) Save(ctx context.Context, n Notification) (Notification, error) {
	for i, existing := range s.saved {
		if existing.ID == n.ID {
			s.saved[i] = n
			return n, nil
		}
	}
	s.saved = append(s.saved, n)
	return n, nil
}

func (s *memoryStore) List(ctx context.Context, recipient string, unreadOnly bool, limit int) ([]Notification, error) {
	return s.saved, nil
}

func (s *memoryStore) MarkRead(ctx context.Context, recipient string, id uuid.UUID) error { return nil }
func (s *memoryStore) MarkAllRead(ctx context.Context, recipient string) error            { return nil }
func (s *memoryStore) Delete(ctx context.Context, recipient string, id uuid.UUID) error   { return nil }

type memoryMailQueue struct {
	emails []Email
	fail   bool
}

func (q *memoryMailQueue) EnqueueEmail(ctx context.Context, email Email) error {
	if q.fail {
		return errors.New("broker unavailable")
	}
	q.emails = append(q.emails, email)
	return nil
}

func TestStatusChangedStoresNotificationAndQueuesEmail(t *testing.T) {
	store := &memoryStore{}
	mail := &memoryMailQueue{}
	d := NewDispatcher(store, mail, nil)

	event := submissions.StatusEvent{
		Kind:      submissions.KindMembership,
		ID:        uuid.New(),
		Email:     "applicant@example.com",
		OldStatus: submissions.StatusPending,
		NewStatus: submissions.StatusApproved,
	}
	d.StatusChanged(context.Background(), event)

	require.Len(t, store.saved, 1)
	n := store.saved[0]
	require.Equal(t, TypeStatusChange, n.Type)
	require.Equal(t, "applicant@example.com", n.Recipient)
	require.Equal(t, "pending", n.Metadata["old_status"])
	require.Equal(t, "approved", n.Metadata["new_status"])
	require.Contains(t, n.Message, "approved")

	require.Len(t, mail.emails, 1)
	require.Equal(t, n.ID, mail.emails[0].NotificationID)
	require.Equal(t, "applicant@example.com", mail.emails[0].To)
}

func TestStatusChangedUnknownKindFallsBackToGenericTemplate(t *testing.T) {
	store := &memoryStore{}
	d := NewDispatcher(store, nil, nil)

	d.StatusChanged(context.Background(), submissions.StatusEvent{
		Kind:      submissions.Kind("newsletter"),
		ID:        uuid.New(),
		Email:     "x@example.com",
		NewStatus: submissions.StatusUnderReview,
	})

	require.Len(t, store.saved, 1)
	require.True(t, strings.HasPrefix(store.saved[0].Title, "Submission"), "got title %q", store.saved[0].Title)
}

func TestEnqueueFailureProducesDeliveryFailedNotification(t *testing.T) {
	store := &memoryStore{}
	mail := &memoryMailQueue{fail: true}
	d := NewDispatcher(store, mail, nil)

	d.StatusChanged(context.Background(), submissions.StatusEvent{
		Kind:      submissions.KindVolunteer,
		ID:        uuid.New(),
		Email:     "v@example.com",
		OldStatus: submissions.StatusPending,
		NewStatus: submissions.StatusRejected,
	})

	require.Len(t, store.saved, 2)
	require.Equal(t, TypeStatusChange, store.saved[0].Type)
	require.Equal(t, TypeDeliveryFailed, store.saved[1].Type)
	require.Equal(t, "v@example.com", store.saved[1].Recipient)
}

func TestRedeliveredEventKeepsStableID(t *testing.T) {
	store := &memoryStore{}
	d := NewDispatcher(store, nil, nil)

	event := submissions.StatusEvent{
		Kind:      submissions.KindDonation,
		ID:        uuid.New(),
		Email:     "d@example.com",
		NewStatus: submissions.StatusCompleted,
	}
	d.StatusChanged(context.Background(), event)
	d.StatusChanged(context.Background(), event)

	require.Len(t, store.saved, 1, "same event must upsert, not duplicate")
}

func TestPaymentCompletedIsHighPriority(t *testing.T) {
	store := &memoryStore{}
	mail := &memoryMailQueue{}
	d := NewDispatcher(store, mail, nil)

	d.PaymentCompleted(context.Background(), submissions.StatusEvent{
		Kind:      submissions.KindDonation,
		ID:        uuid.New(),
		Email:     "d@example.com",
		NewStatus: submissions.StatusCompleted,
	})

	require.Len(t, store.saved, 1)
	require.Equal(t, TypePayment, store.saved[0].Type)
	require.Equal(t, PriorityHigh, store.saved[0].Priority)
	require.Len(t, mail.emails, 1)
}

func TestSubmissionReceivedStaysInApp(t *testing.T) {
	store := &memoryStore{}
	mail := &memoryMailQueue{}
	d := NewDispatcher(store, mail, nil)

	d.SubmissionReceived(context.Background(), submissions.Submission{
		ID:    uuid.New(),
		Kind:  submissions.KindPhilosophyCafe,
		Email: "guest@example.com",
	})

	require.Len(t, store.saved, 1)
	require.Contains(t, store.saved[0].Message, "pending review")
	require.Empty(t, mail.emails, "intake confirmation must not email")
}
