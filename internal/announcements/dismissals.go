package announcements

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Dismissals tracks which announcements a viewer closed. Entries live in a
// Redis set per viewer key and never expire; a dismissed announcement stays
// dismissed across sessions.
type Dismissals struct {
	rdb *redis.Client
}

// NewDismissals constructs a Dismissals store.
func NewDismissals(rdb *redis.Client) *Dismissals {
	return &Dismissals{rdb: rdb}
}

func dismissalKey(viewer string) string {
	return "console:announcements:dismissed:" + viewer
}

// Dismiss records that the viewer closed the announcement.
func (d *Dismissals) Dismiss(ctx context.Context, viewer, announcementID string) error {
	return d.rdb.SAdd(ctx, dismissalKey(viewer), announcementID).Err()
}

// Dismissed returns the set of announcement ids the viewer closed.
func (d *Dismissals) Dismissed(ctx context.Context, viewer string) (map[string]struct{}, error) {
	ids, err := d.rdb.SMembers(ctx, dismissalKey(viewer)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
