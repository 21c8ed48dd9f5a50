package announcements

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service combines storage, targeting, dismissals and auto-hide.
type Service struct {
	repo       RepositoryPort
	dismissals *Dismissals
	scheduler  *Scheduler
	logger     *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, dismissals *Dismissals, scheduler *Scheduler, logger *slog.Logger) *Service {
	return &Service{repo: repo, dismissals: dismissals, scheduler: scheduler, logger: logger}
}

// ActiveFor returns the announcements one viewer should currently see:
// targeting rules applied, dismissed ids filtered out.
func (s *Service) ActiveFor(ctx context.Context, viewer string, view ViewContext) ([]Announcement, error) {
	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	selected := SelectActive(all, view)
	if viewer == "" || s.dismissals == nil {
		return selected, nil
	}
	dismissed, err := s.dismissals.Dismissed(ctx, viewer)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("load dismissals", slog.Any("error", err))
		}
		return selected, nil
	}
	out := selected[:0]
	for _, a := range selected {
		if _, hidden := dismissed[a.ID.String()]; !hidden {
			out = append(out, a)
		}
	}
	return out, nil
}

// ErrNotDismissible indicates an attempt to dismiss a pinned announcement.
var ErrNotDismissible = errors.New("announcements: not dismissible")

// Dismiss hides the announcement for this viewer permanently.
func (s *Service) Dismiss(ctx context.Context, viewer string, id uuid.UUID) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !a.Dismissible {
		return ErrNotDismissible
	}
	return s.dismissals.Dismiss(ctx, viewer, id.String())
}

// Displayed arms the auto-hide timer for an announcement the viewer just
// rendered. When the timer fires the announcement joins that viewer's
// dismissal set; everyone else keeps seeing it. Announcements without an
// auto-hide interval are left alone, and repeated calls while a timer is
// pending are no-ops.
func (s *Service) Displayed(ctx context.Context, viewer string, id uuid.UUID) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !a.AutoHide() || s.scheduler == nil || s.dismissals == nil || viewer == "" {
		return nil
	}
	s.scheduler.Schedule(viewer, a.ID.String(), time.Duration(a.AutoHideSeconds)*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.dismissals.Dismiss(ctx, viewer, a.ID.String()); err != nil && s.logger != nil {
			s.logger.Warn("auto-hide announcement", slog.String("id", a.ID.String()), slog.Any("error", err))
		}
	})
	return nil
}

// List returns every announcement for administration.
func (s *Service) List(ctx context.Context) ([]Announcement, error) {
	return s.repo.List(ctx)
}

// Get fetches one announcement.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Announcement, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new announcement.
func (s *Service) Create(ctx context.Context, a Announcement) (Announcement, error) {
	return s.repo.Create(ctx, a)
}

// Update replaces an announcement and cancels any pending auto-hide so the
// new interval takes effect on next display.
func (s *Service) Update(ctx context.Context, a Announcement) (Announcement, error) {
	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return Announcement{}, err
	}
	if s.scheduler != nil {
		s.scheduler.CancelAll(a.ID.String())
	}
	return updated, nil
}

// Delete removes an announcement and its pending timer.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.CancelAll(id.String())
	}
	return nil
}

// Close releases the auto-hide timers.
func (s *Service) Close() {
	if s.scheduler != nil {
		s.scheduler.Close()
	}
}
