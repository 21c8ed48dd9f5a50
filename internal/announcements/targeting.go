package announcements

import (
	"sort"
	"strings"
)

// AudienceAll targets every role including anonymous visitors.
const AudienceAll = "all"

// SelectActive filters announcements down to the ones a viewer should see,
// highest priority first. The time window includes the start instant and
// excludes the end instant; a nil end means the announcement runs until
// deactivated. Empty targeting lists impose no constraint.
func SelectActive(all []Announcement, view ViewContext) []Announcement {
	var out []Announcement
	for _, a := range all {
		if !a.Active {
			continue
		}
		if view.Now.Before(a.StartsAt) {
			continue
		}
		if a.EndsAt != nil && !view.Now.Before(*a.EndsAt) {
			continue
		}
		if !matchesAudience(a.Audience, view.Role) {
			continue
		}
		if !matchesPage(a.Pages, view.Page) {
			continue
		}
		if !matchesDevice(a.Devices, view.Device) {
			continue
		}
		if view.Visits < a.MinVisits {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

func matchesAudience(audience []string, role string) bool {
	if len(audience) == 0 {
		return true
	}
	for _, entry := range audience {
		if entry == AudienceAll || strings.EqualFold(entry, role) {
			return true
		}
	}
	return false
}

// matchesPage does prefix matching so "/programs" also covers
// "/programs/philosophy-cafe".
func matchesPage(pages []string, page string) bool {
	if len(pages) == 0 {
		return true
	}
	for _, prefix := range pages {
		if prefix != "" && strings.HasPrefix(page, prefix) {
			return true
		}
	}
	return false
}

func matchesDevice(devices []string, device string) bool {
	if len(devices) == 0 {
		return true
	}
	for _, entry := range devices {
		if strings.EqualFold(entry, device) {
			return true
		}
	}
	return false
}
