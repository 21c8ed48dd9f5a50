package notifications

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Feed holds the merged notification view for one recipient. Records arriving
// from the store and from the live stream are merged by id, last write wins,
// so a replayed or updated record replaces its earlier version instead of
// appearing twice.
type Feed struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]Notification
	order []uuid.UUID
}

// NewFeed builds an empty feed.
func NewFeed() *Feed {
	return &Feed{byID: make(map[uuid.UUID]Notification)}
}

// Apply merges one record into the feed.
func (f *Feed) Apply(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, seen := f.byID[n.ID]; !seen {
		f.order = append(f.order, n.ID)
	}
	f.byID[n.ID] = n
}

// ApplyAll merges a batch, typically the initial store load.
func (f *Feed) ApplyAll(batch []Notification) {
	for _, n := range batch {
		f.Apply(n)
	}
}

// Remove drops one record from the feed.
func (f *Feed) Remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return
	}
	delete(f.byID, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Snapshot returns the current records, newest first.
func (f *Feed) Snapshot() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, 0, len(f.byID))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Unread counts records not yet marked read.
func (f *Feed) Unread() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, record := range f.byID {
		if !record.Read {
			n++
		}
	}
	return n
}

// Len returns the number of distinct records.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.byID)
}
