package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendEmail is the task type for transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeAnnouncementSweep deactivates announcements past their end.
	TaskTypeAnnouncementSweep = "announcements:sweep"
	// TaskTypeNotificationPrune removes old read notifications.
	TaskTypeNotificationPrune = "notifications:prune"
)

// SendEmailPayload describes one email to deliver. The notification id keys
// queue-level deduplication: redelivering the same notification is a no-op.
type SendEmailPayload struct {
	NotificationID string `json:"notification_id"`
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task for one email.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewAnnouncementSweepTask constructs the periodic expiry sweep task.
func NewAnnouncementSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAnnouncementSweep, nil)
}

// NotificationPrunePayload configures the retention sweep.
type NotificationPrunePayload struct {
	OlderThanDays int `json:"older_than_days"`
}

// NewNotificationPruneTask constructs the periodic retention task.
func NewNotificationPruneTask(payload NotificationPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotificationPrune, data), nil
}
