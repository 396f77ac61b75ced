package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/store"
)

type fakeWriter struct {
	err   error
	calls int
}

func (w *fakeWriter) UpdateCell(context.Context, int, int, string) error {
	w.calls++
	return w.err
}

func newTestRecords(t *testing.T) *store.Records {
	t.Helper()
	row := make([]string, 26)
	row[0] = "2025-01-10"
	row[2], row[3] = "Amy", "Lee"
	row[13] = "Warm"
	records := store.NewRecords(model.DefaultSchema())
	records.Replace(&client.Snapshot{
		Rows: []model.Row{{Values: row}},
		Columns: &model.ColumnDefs{
			EditableColumns: map[int]model.EditableColumn{
				13: {Options: []string{"Hot", "Warm", "Cold"}},
			},
		},
		FetchedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}, time.Time{})
	return records
}

func TestEditCell_Applied(t *testing.T) {
	records := newTestRecords(t)
	w := &fakeWriter{}

	rec, err := editCell(context.Background(), records, w, 0, 13, "Hot")
	if err != nil {
		t.Fatal(err)
	}
	if rec.State != model.EditApplied {
		t.Errorf("State = %q, want applied", rec.State)
	}
	if rec.OldValue != "Warm" || rec.NewValue != "Hot" {
		t.Errorf("record = %q -> %q", rec.OldValue, rec.NewValue)
	}
	if l, _ := records.Lead(0); l.LeadStage != "Hot" {
		t.Errorf("store stage = %q, want Hot", l.LeadStage)
	}
	if w.calls != 1 {
		t.Errorf("UpdateCell called %d times, want 1", w.calls)
	}
}

func TestEditCell_Rejected(t *testing.T) {
	records := newTestRecords(t)
	w := &fakeWriter{err: errors.New("sheet locked")}

	rec, err := editCell(context.Background(), records, w, 0, 13, "Cold")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if rec == nil || rec.State != model.EditRejected {
		t.Fatalf("record = %+v, want rejected", rec)
	}
	if l, _ := records.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("store stage = %q, want unchanged Warm", l.LeadStage)
	}
}

func TestEditCell_UnlistedValueStillWrites(t *testing.T) {
	records := newTestRecords(t)
	w := &fakeWriter{}

	rec, err := editCell(context.Background(), records, w, 0, 13, "Lukewarm")
	if err != nil {
		t.Fatal(err)
	}
	if rec.State != model.EditApplied {
		t.Errorf("State = %q, want applied", rec.State)
	}
}

func TestEditCell_Errors(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
	}{
		{"action column", 0, model.CallFormColumn},
		{"row out of range", 5, 13},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := &fakeWriter{}
			if _, err := editCell(context.Background(), newTestRecords(t), w, tc.row, tc.col, "x"); err == nil {
				t.Fatal("expected error, got nil")
			}
			if w.calls != 0 {
				t.Errorf("UpdateCell called %d times, want 0", w.calls)
			}
		})
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseRow(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseRow(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("parseRow(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
