package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// AnnouncementSweeper deactivates announcements whose end instant passed.
type AnnouncementSweeper interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// NotificationPruner deletes read notifications older than the cutoff.
type NotificationPruner interface {
	PruneRead(ctx context.Context, olderThanDays int) (int64, error)
}

// Sweeps bundles the periodic maintenance handlers.
type Sweeps struct {
	announcements AnnouncementSweeper
	notifications NotificationPruner
	logger        *slog.Logger
}

// NewSweeps constructs the maintenance handlers.
func NewSweeps(announcements AnnouncementSweeper, notifications NotificationPruner, logger *slog.Logger) *Sweeps {
	return &Sweeps{announcements: announcements, notifications: notifications, logger: logger}
}

// HandleAnnouncementSweep processes TaskTypeAnnouncementSweep tasks.
func (s *Sweeps) HandleAnnouncementSweep(ctx context.Context, t *asynq.Task) error {
	if s.announcements == nil {
		return nil
	}
	n, err := s.announcements.DeactivateExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 && s.logger != nil {
		s.logger.Info("announcement sweep", slog.Int64("deactivated", n))
	}
	return nil
}

// HandleNotificationPrune processes TaskTypeNotificationPrune tasks.
func (s *Sweeps) HandleNotificationPrune(ctx context.Context, t *asynq.Task) error {
	if s.notifications == nil {
		return nil
	}
	payload := NotificationPrunePayload{OlderThanDays: 90}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	n, err := s.notifications.PruneRead(ctx, payload.OlderThanDays)
	if err != nil {
		return err
	}
	if n > 0 && s.logger != nil {
		s.logger.Info("notification prune", slog.Int64("deleted", n))
	}
	return nil
}
