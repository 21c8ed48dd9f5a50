package submissions

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWriteCSVUnionsPayloadColumns(t *testing.T) {
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	subs := []Submission{
		{
			ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Email: "a@example.com",
			Status: StatusPending, SubmittedAt: when,
			Payload: map[string]any{"full_name": "Alice", "phone": "0788"},
		},
		{
			ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Email: "b@example.com",
			Status: StatusApproved, SubmittedAt: when,
			Payload: map[string]any{"full_name": "Bob", "motivation": "community work"},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, subs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	wantHeader := []string{"id", "email", "status", "submission_date", "full_name", "motivation", "phone"}
	if len(records[0]) != len(wantHeader) {
		t.Fatalf("header mismatch: got %v", records[0])
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	// first row has no motivation; the cell must exist and be empty
	if records[1][5] != "" {
		t.Fatalf("expected empty motivation cell, got %q", records[1][5])
	}
	if records[2][4] != "Bob" {
		t.Fatalf("expected full_name Bob, got %q", records[2][4])
	}
	if records[1][2] != "pending" || records[2][2] != "approved" {
		t.Fatalf("status columns wrong: %q %q", records[1][2], records[2][2])
	}
}

func TestWriteCSVEmptyListStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 1 || len(records[0]) != 4 {
		t.Fatalf("expected single 4-column header, got %v", records)
	}
}
