package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/benirage/console/internal/submissions"
)

// Email is one outbound message handed to the mail queue.
type Email struct {
	NotificationID uuid.UUID `json:"notification_id"`
	To             string    `json:"to"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
}

// MailEnqueuer queues an email for background delivery.
type MailEnqueuer interface {
	EnqueueEmail(ctx context.Context, email Email) error
}

// statusMessages is the fixed template table keyed by new status.
var statusMessages = map[submissions.Status]string{
	submissions.StatusPending:        "submitted and pending review",
	submissions.StatusUnderReview:    "now under review",
	submissions.StatusApproved:       "approved",
	submissions.StatusRejected:       "not approved at this time",
	submissions.StatusAdditionalInfo: "waiting on additional information from you",
	submissions.StatusCompleted:      "completed",
}

// kindLabels names each form kind in recipient-facing text.
var kindLabels = map[submissions.Kind]string{
	submissions.KindMembership:       "Membership application",
	submissions.KindVolunteer:        "Volunteer application",
	submissions.KindPartnership:      "Partnership application",
	submissions.KindContact:          "Contact message",
	submissions.KindDonation:         "Donation",
	submissions.KindPhilosophyCafe:   "Philosophy Café application",
	submissions.KindLeadershipEthics: "Leadership ethics workshop registration",
}

// Dispatcher turns workflow events into in-app notifications and queued
// emails. Every method is best effort: failures are logged or surfaced as a
// secondary delivery-failure notification, never returned to the caller.
type Dispatcher struct {
	store  StorePort
	mail   MailEnqueuer
	logger *slog.Logger
}

// NewDispatcher constructs a Dispatcher. mail may be nil; emails are then
// skipped entirely.
func NewDispatcher(store StorePort, mail MailEnqueuer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, mail: mail, logger: logger}
}

// SubmissionReceived records the confirmation notification for a new intake.
func (d *Dispatcher) SubmissionReceived(ctx context.Context, sub submissions.Submission) {
	label := kindLabel(sub.Kind)
	d.save(ctx, Notification{
		ID:        eventID("received", string(sub.Kind), sub.ID.String(), string(submissions.StatusPending)),
		Recipient: sub.Email,
		Type:      TypeSubmission,
		Title:     label + " received",
		Message:   fmt.Sprintf("%s %s.", label, statusMessages[submissions.StatusPending]),
		Priority:  PriorityNormal,
		Metadata:  map[string]any{"kind": string(sub.Kind), "submission_id": sub.ID.String()},
	})
}

// StatusChanged records the in-app notification and queues the email for a
// status transition.
func (d *Dispatcher) StatusChanged(ctx context.Context, event submissions.StatusEvent) {
	label := kindLabel(event.Kind)
	message, ok := statusMessages[event.NewStatus]
	if !ok {
		message = "updated"
	}
	n := d.save(ctx, Notification{
		ID:        eventID("status", string(event.Kind), event.ID.String(), string(event.NewStatus)),
		Recipient: event.Email,
		Type:      TypeStatusChange,
		Title:     label + " update",
		Message:   fmt.Sprintf("Your %s is %s.", lower(label), message),
		Priority:  priorityFor(event.NewStatus),
		Metadata: map[string]any{
			"kind":          string(event.Kind),
			"submission_id": event.ID.String(),
			"old_status":    string(event.OldStatus),
			"new_status":    string(event.NewStatus),
		},
	})
	d.sendEmail(ctx, n, event.Note)
}

// PaymentCompleted records the payment confirmation and queues its email.
func (d *Dispatcher) PaymentCompleted(ctx context.Context, event submissions.StatusEvent) {
	n := d.save(ctx, Notification{
		ID:        eventID("payment", string(event.Kind), event.ID.String(), string(event.NewStatus)),
		Recipient: event.Email,
		Type:      TypePayment,
		Title:     "Donation completed",
		Message:   "Thank you, your donation has been received and processed.",
		Priority:  PriorityHigh,
		Metadata:  map[string]any{"submission_id": event.ID.String()},
	})
	d.sendEmail(ctx, n, "")
}

func (d *Dispatcher) save(ctx context.Context, n Notification) Notification {
	saved, err := d.store.Save(ctx, n)
	if err != nil {
		if d.logger != nil {
			d.logger.Error("save notification", slog.String("recipient", n.Recipient), slog.Any("error", err))
		}
		return n
	}
	return saved
}

func (d *Dispatcher) sendEmail(ctx context.Context, n Notification, note string) {
	if d.mail == nil {
		return
	}
	body := n.Message
	if note != "" {
		body += "\n\nNote from the review team: " + note
	}
	err := d.mail.EnqueueEmail(ctx, Email{
		NotificationID: n.ID,
		To:             n.Recipient,
		Subject:        n.Title,
		Body:           body,
	})
	if err == nil {
		return
	}
	if d.logger != nil {
		d.logger.Warn("enqueue email", slog.String("to", n.Recipient), slog.Any("error", err))
	}
	d.save(ctx, Notification{
		ID:        eventID("delivery_failed", n.ID.String()),
		Recipient: n.Recipient,
		Type:      TypeDeliveryFailed,
		Title:     "Email delivery failed",
		Message:   "We could not send you an email about: " + n.Title + ". The update is available here instead.",
		Priority:  PriorityLow,
		Metadata:  map[string]any{"notification_id": n.ID.String()},
	})
}

func priorityFor(status submissions.Status) Priority {
	switch status {
	case submissions.StatusApproved, submissions.StatusRejected:
		return PriorityHigh
	case submissions.StatusAdditionalInfo:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

func kindLabel(kind submissions.Kind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return "Submission"
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// eventID derives a stable id from the event identity so redelivery upserts
// instead of duplicating.
func eventID(parts ...string) uuid.UUID {
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += "|"
		}
		joined += p
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(joined))
}
