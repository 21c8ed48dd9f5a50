package announcements

import (
	"sync"
	"time"
)

type timerKey struct {
	viewer string
	id     string
}

// Scheduler fires auto-hide callbacks. At most one timer exists per viewer
// and announcement id; scheduling a pair with a pending timer is a no-op, so
// a banner displayed on several pages at once still hides exactly once for
// that viewer.
type Scheduler struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
	closed bool
}

// NewScheduler builds an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[timerKey]*time.Timer)}
}

// Schedule arms the auto-hide timer for the viewer and id unless one is
// already pending. The callback runs once, after delay, and clears the
// pending slot first so the pair can be scheduled again afterwards.
func (s *Scheduler) Schedule(viewer, id string, delay time.Duration, hide func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	key := timerKey{viewer: viewer, id: id}
	if _, pending := s.timers[key]; pending {
		return
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		hide()
	})
}

// Cancel stops a viewer's pending timer. Cancelling an unknown pair is a
// no-op.
func (s *Scheduler) Cancel(viewer, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey{viewer: viewer, id: id}
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// CancelAll stops every viewer's pending timer for the announcement id.
func (s *Scheduler) CancelAll(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		if key.id == id {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

// Close stops every pending timer and refuses further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Pending reports whether the viewer has an armed timer for id.
func (s *Scheduler) Pending(viewer, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[timerKey{viewer: viewer, id: id}]
	return ok
}
