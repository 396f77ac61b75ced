package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/model"
)

// fakeClock returns a controllable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func row(first, stage string) model.Row {
	values := make([]string, 20)
	values[0] = "2025-03-01"
	values[2] = first
	values[13] = stage
	return model.Row{Values: values}
}

func snapshot(rows ...model.Row) *client.Snapshot {
	return &client.Snapshot{
		Headers:   []string{"Date", "Time", "First"},
		Rows:      rows,
		Columns:   &model.ColumnDefs{},
		FetchedAt: time.Now(),
	}
}

func newTestRecords(t *testing.T) (*Records, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	n := 0
	r := NewRecords(model.DefaultSchema(),
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("ed-%d", n)
		}),
	)
	return r, clock
}

const stageCol = 13

func TestReplaceReportsChange(t *testing.T) {
	r, clock := newTestRecords(t)

	if !r.Replace(snapshot(row("Ava", "Hot")), clock.Now()) {
		t.Error("first load with rows should report change")
	}
	if r.Replace(snapshot(row("Ava", "Hot")), clock.Now()) {
		t.Error("identical snapshot should not report change")
	}
	if !r.Replace(snapshot(row("Ava", "Warm")), clock.Now()) {
		t.Error("different row should report change")
	}

	s := snapshot(row("Ava", "Warm"))
	s.Alerts = []model.Alert{{ID: "a1"}}
	if !r.Replace(s, clock.Now()) {
		t.Error("new alert should report change")
	}
}

func TestReplaceDerivesLeadsWithIndex(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot"), row("Ben", "Warm")), clock.Now())

	leads := r.Leads()
	if len(leads) != 2 {
		t.Fatalf("got %d leads", len(leads))
	}
	if leads[1].Index != 1 || leads[1].FirstName != "Ben" {
		t.Errorf("unexpected lead: %+v", leads[1])
	}
	if !r.Loaded() {
		t.Error("store should be loaded")
	}
}

func TestReplaceNilKeepsSnapshot(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())
	if r.Replace(nil, clock.Now()) {
		t.Error("nil snapshot reports no change")
	}
	if len(r.Leads()) != 1 {
		t.Error("previous snapshot should stay in place")
	}
}

func TestBeginEditRange(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	tests := []struct {
		name    string
		row     int
		col     int
		wantErr error
	}{
		{"ok", 0, stageCol, nil},
		{"negative row", -1, stageCol, ErrRowOutOfRange},
		{"past last row", 1, stageCol, ErrRowOutOfRange},
		{"negative col", 0, -1, ErrColumnOutOfRange},
		{"past reserved block", 0, 40, ErrColumnOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.BeginEdit(tt.row, tt.col, "x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEditApplyPatchesOnlyOnSuccess(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	e, err := r.BeginEdit(0, stageCol, "Warm", WithActor("alex"))
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if e.State() != model.EditSending {
		t.Errorf("state = %s, want sending", e.State())
	}
	if e.Old != "Hot" || e.Field != model.FieldLeadStage {
		t.Errorf("unexpected edit: %+v", e)
	}
	if l, _ := r.Lead(0); l.LeadStage != "Hot" {
		t.Error("store must not change while sending")
	}
	if got := r.EditState(0, stageCol); got != model.EditSending {
		t.Errorf("EditState = %s", got)
	}

	before := r.Snapshot()
	if err := e.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if l, _ := r.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("stage = %q, want Warm", l.LeadStage)
	}
	if before.Rows[0].Value(stageCol) != "Hot" {
		t.Error("snapshot handed out before Apply was mutated")
	}
	if err := e.Apply(); !errors.Is(err, ErrEditResolved) {
		t.Errorf("second Apply err = %v, want ErrEditResolved", err)
	}
	rec := e.Record()
	if rec.State != model.EditApplied || rec.Actor != "alex" || rec.ResolvedAt == nil || rec.Field != "lead_stage" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestEditRejectLeavesStore(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	e, _ := r.BeginEdit(0, stageCol, "Warm")
	cause := errors.New("Row locked")
	if err := e.Reject(cause); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if l, _ := r.Lead(0); l.LeadStage != "Hot" {
		t.Error("rejected edit must not patch")
	}
	if !errors.Is(e.Err(), cause) {
		t.Errorf("Err = %v", e.Err())
	}
	if err := e.Apply(); !errors.Is(err, ErrEditResolved) {
		t.Errorf("Apply after Reject err = %v", err)
	}
	if rec := e.Record(); rec.Error != "Row locked" {
		t.Errorf("record error = %q", rec.Error)
	}
}

func TestAppliedEditSurvivesStalePoll(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	// The poll starts, then the edit lands, then the stale poll completes.
	fetchStarted := clock.Now()
	clock.Advance(time.Second)
	e, _ := r.BeginEdit(0, stageCol, "Warm")
	clock.Advance(time.Second)
	_ = e.Apply()

	r.Replace(snapshot(row("Ava", "Hot")), fetchStarted)
	if l, _ := r.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("stage = %q, applied edit should survive stale poll", l.LeadStage)
	}

	// A poll started after the edit resolved reflects the sheet; the edit is pruned.
	clock.Advance(time.Second)
	r.Replace(snapshot(row("Ava", "Cold")), clock.Now())
	if l, _ := r.Lead(0); l.LeadStage != "Cold" {
		t.Errorf("stage = %q, fresh poll should win", l.LeadStage)
	}
	if got := r.EditState(0, stageCol); got != model.EditIdle {
		t.Errorf("EditState after prune = %s, want idle", got)
	}
}

func TestAppliedEditSurvivesStalePollWhileNewerEditSending(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	fetchStarted := clock.Now()
	clock.Advance(time.Second)
	applied, _ := r.BeginEdit(0, stageCol, "Warm")
	clock.Advance(time.Second)
	_ = applied.Apply()

	clock.Advance(time.Second)
	sending, _ := r.BeginEdit(0, stageCol, "Cold")

	r.Replace(snapshot(row("Ava", "Hot")), fetchStarted)
	if l, _ := r.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("stage after stale poll = %q, want Warm", l.LeadStage)
	}
	if got := r.EditState(0, stageCol); got != model.EditSending {
		t.Errorf("EditState = %s, want sending", got)
	}

	_ = sending.Reject(errors.New("Row locked"))
	if l, _ := r.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("stage after newer edit rejected = %q, want Warm", l.LeadStage)
	}

	// Once a poll starts after the applied edit resolved, the sheet wins.
	clock.Advance(time.Second)
	r.Replace(snapshot(row("Ava", "Warm")), clock.Now())
	if l, _ := r.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("stage after fresh poll = %q, want Warm", l.LeadStage)
	}
}

func TestRejectRestoresLateAppliedEdit(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	older, _ := r.BeginEdit(0, stageCol, "Warm")
	clock.Advance(time.Millisecond)
	newer, _ := r.BeginEdit(0, stageCol, "Cold")

	_ = older.Apply()
	if l, _ := r.Lead(0); l.LeadStage != "Hot" {
		t.Errorf("stage = %q, older edit must not patch over a newer one", l.LeadStage)
	}
	_ = newer.Reject(errors.New("Row locked"))
	if l, _ := r.Lead(0); l.LeadStage != "Warm" {
		t.Errorf("stage = %q, want the applied value Warm", l.LeadStage)
	}
}

func TestLatestEditPerCellWins(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot")), clock.Now())

	older, _ := r.BeginEdit(0, stageCol, "Warm")
	clock.Advance(time.Millisecond)
	newer, _ := r.BeginEdit(0, stageCol, "Closed-Won")

	_ = newer.Apply()
	_ = older.Apply()

	if older.State() != model.EditApplied {
		t.Errorf("older state = %s, want applied", older.State())
	}
	if l, _ := r.Lead(0); l.LeadStage != "Closed-Won" {
		t.Errorf("stage = %q, newest edit should win", l.LeadStage)
	}
}

func TestPendingEdits(t *testing.T) {
	r, clock := newTestRecords(t)
	r.Replace(snapshot(row("Ava", "Hot"), row("Ben", "Warm")), clock.Now())

	a, _ := r.BeginEdit(0, stageCol, "Warm")
	clock.Advance(time.Millisecond)
	_, _ = r.BeginEdit(1, stageCol, "Hot")
	_ = a.Apply()

	pending := r.Pending()
	if len(pending) != 1 || pending[0].Row != 1 {
		t.Errorf("unexpected pending: %+v", pending)
	}
}

func TestRemoveAlert(t *testing.T) {
	r, clock := newTestRecords(t)
	s := snapshot(row("Ava", "Hot"))
	s.Alerts = []model.Alert{{ID: "a1"}, {ID: "a2"}}
	r.Replace(s, clock.Now())

	if !r.RemoveAlert("a1") {
		t.Fatal("RemoveAlert(a1) = false")
	}
	if r.RemoveAlert("missing") {
		t.Error("RemoveAlert(missing) = true")
	}
	alerts := r.Alerts()
	if len(alerts) != 1 || alerts[0].ID != "a2" {
		t.Errorf("alerts = %+v", alerts)
	}
	if _, err := r.Alert("a1"); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("Alert(a1) err = %v", err)
	}
	if len(s.Alerts) != 2 {
		t.Error("caller's snapshot should not be modified")
	}
}

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	for i := range 5 {
		_ = j.RecordEdit(ctx, &model.EditRecord{ID: fmt.Sprintf("ed-%d", i), RowIndex: i % 2})
	}

	all, _ := j.ListEdits(ctx, EditFilter{})
	if len(all) != 5 || all[0].ID != "ed-4" {
		t.Errorf("expected newest first, got %v", all)
	}

	row := 1
	filtered, _ := j.ListEdits(ctx, EditFilter{RowIndex: &row, Limit: 1})
	if len(filtered) != 1 || filtered[0].ID != "ed-3" {
		t.Errorf("unexpected filtered: %v", filtered)
	}
}

func TestNoopJournal(t *testing.T) {
	var j Journal = NoopJournal{}
	if err := j.RecordEdit(context.Background(), &model.EditRecord{}); err != nil {
		t.Error(err)
	}
	edits, err := j.ListEdits(context.Background(), EditFilter{})
	if err != nil || len(edits) != 0 {
		t.Errorf("ListEdits = %v, %v", edits, err)
	}
}
