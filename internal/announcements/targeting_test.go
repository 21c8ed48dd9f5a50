package announcements

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func banner(mutate func(*Announcement)) Announcement {
	a := Announcement{
		ID:          uuid.New(),
		Type:        TypeInfo,
		Title:       "General assembly",
		Active:      true,
		Dismissible: true,
		StartsAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(&a)
	}
	return a
}

func at(day int) time.Time {
	return time.Date(2026, 6, day, 10, 0, 0, 0, time.UTC)
}

func TestSelectActiveEndInstantIsExcluded(t *testing.T) {
	end := at(15)
	a := banner(func(a *Announcement) { a.EndsAt = &end })

	require.Len(t, SelectActive([]Announcement{a}, ViewContext{Now: end.Add(-time.Second)}), 1)
	require.Empty(t, SelectActive([]Announcement{a}, ViewContext{Now: end}))
	require.Empty(t, SelectActive([]Announcement{a}, ViewContext{Now: end.Add(time.Hour)}))
}

func TestSelectActiveOpenEndedRunsIndefinitely(t *testing.T) {
	a := banner(nil)
	farFuture := time.Date(2031, 12, 31, 23, 59, 0, 0, time.UTC)
	require.Len(t, SelectActive([]Announcement{a}, ViewContext{Now: farFuture}), 1)
}

func TestSelectActiveBeforeStartIsHidden(t *testing.T) {
	a := banner(func(a *Announcement) { a.StartsAt = at(20) })
	require.Empty(t, SelectActive([]Announcement{a}, ViewContext{Now: at(19)}))
	require.Len(t, SelectActive([]Announcement{a}, ViewContext{Now: at(20)}), 1)
}

func TestSelectActiveInactiveFlagWinsOverWindow(t *testing.T) {
	a := banner(func(a *Announcement) { a.Active = false })
	require.Empty(t, SelectActive([]Announcement{a}, ViewContext{Now: at(10)}))
}

func TestSelectActiveDeviceFilter(t *testing.T) {
	a := banner(func(a *Announcement) { a.Devices = []string{"mobile", "tablet"} })
	view := ViewContext{Now: at(10)}

	view.Device = "mobile"
	require.Len(t, SelectActive([]Announcement{a}, view), 1)
	view.Device = "desktop"
	require.Empty(t, SelectActive([]Announcement{a}, view))

	open := banner(nil)
	require.Len(t, SelectActive([]Announcement{open}, view), 1, "empty device list matches all")
}

func TestSelectActivePagePrefixMatch(t *testing.T) {
	a := banner(func(a *Announcement) { a.Pages = []string{"/programs"} })
	view := ViewContext{Now: at(10)}

	view.Page = "/programs/philosophy-cafe"
	require.Len(t, SelectActive([]Announcement{a}, view), 1)
	view.Page = "/about"
	require.Empty(t, SelectActive([]Announcement{a}, view))
}

func TestSelectActiveAudienceAndVisits(t *testing.T) {
	a := banner(func(a *Announcement) {
		a.Audience = []string{"member"}
		a.MinVisits = 3
	})
	view := ViewContext{Now: at(10), Role: "member", Visits: 3}
	require.Len(t, SelectActive([]Announcement{a}, view), 1)

	view.Visits = 2
	require.Empty(t, SelectActive([]Announcement{a}, view))

	view.Visits = 5
	view.Role = "guest"
	require.Empty(t, SelectActive([]Announcement{a}, view))

	everyone := banner(func(a *Announcement) { a.Audience = []string{AudienceAll} })
	require.Len(t, SelectActive([]Announcement{everyone}, ViewContext{Now: at(10), Role: "guest"}), 1)
}

func TestSelectActiveOrdersByPriority(t *testing.T) {
	low := banner(func(a *Announcement) { a.Title = "low"; a.Priority = 1 })
	urgent := banner(func(a *Announcement) { a.Title = "urgent"; a.Type = TypeUrgent; a.Priority = 9 })
	mid := banner(func(a *Announcement) { a.Title = "mid"; a.Priority = 5 })

	got := SelectActive([]Announcement{low, urgent, mid}, ViewContext{Now: at(10)})
	require.Len(t, got, 3)
	require.Equal(t, "urgent", got[0].Title)
	require.Equal(t, "mid", got[1].Title)
	require.Equal(t, "low", got[2].Title)
}
