package submissions

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"
)

// fixed columns present in every export, ahead of payload fields.
var exportHeader = []string{"id", "email", "status", "submission_date"}

// WriteCSV streams submissions as CSV. Fixed columns come first, followed by
// the sorted union of payload keys so that every row has the same shape.
func WriteCSV(w io.Writer, subs []Submission) error {
	keys := payloadKeys(subs)
	cw := csv.NewWriter(w)

	if err := cw.Write(append(append([]string{}, exportHeader...), keys...)); err != nil {
		return err
	}
	for _, sub := range subs {
		row := []string{
			sub.ID.String(),
			sub.Email,
			string(sub.Status),
			sub.SubmittedAt.Format(time.RFC3339),
		}
		for _, k := range keys {
			row = append(row, stringify(sub.Payload[k]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func payloadKeys(subs []Submission) []string {
	seen := make(map[string]struct{})
	for _, sub := range subs {
		for k := range sub.Payload {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
