// Package store holds the in-memory record store that backs every derived
// view, and the edit journal interface.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/model"
)

var (
	// ErrRowOutOfRange is returned when an edit targets a row the store does not hold.
	ErrRowOutOfRange = errors.New("row index out of range")
	// ErrColumnOutOfRange is returned when an edit targets a column past the row width.
	ErrColumnOutOfRange = errors.New("column index out of range")
	// ErrEditResolved is returned when Apply or Reject is called on a final edit.
	ErrEditResolved = errors.New("edit already resolved")
	// ErrAlertNotFound is returned when an alert ID is not in the store.
	ErrAlertNotFound = errors.New("alert not found")
)

type cellKey struct {
	row, col int
}

// Records is the single source of truth for the bound sheet. Snapshots are
// replaced wholesale on each successful poll and patched copy-on-write by
// applied edits, so a Snapshot returned to a caller is never mutated.
type Records struct {
	mu     sync.RWMutex
	schema *model.Schema
	snap   *client.Snapshot
	leads  []model.Lead

	// applied holds edits that resolved Applied and have not yet been seen
	// in a fetched snapshot.
	applied []*Edit
	// latest is the most recently begun edit for each cell.
	latest map[cellKey]*Edit
	// confirmed is the most recently begun edit for each cell that the
	// sheet has accepted. It can lag latest while a newer edit is Sending.
	confirmed map[cellKey]*Edit
	seq       uint64

	newID func() string
	now   func() time.Time
}

// Option configures Records.
type Option func(*Records)

// WithIDGenerator overrides the edit ID source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Records) { r.newID = fn }
}

// WithClock overrides the time source used to stamp edits.
func WithClock(fn func() time.Time) Option {
	return func(r *Records) { r.now = fn }
}

// NewRecords creates an empty store for the given schema.
func NewRecords(schema *model.Schema, opts ...Option) *Records {
	r := &Records{
		schema: schema,
		snap:   &client.Snapshot{},
		latest:    make(map[cellKey]*Edit),
		confirmed: make(map[cellKey]*Edit),
		newID:     newEditID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schema returns the schema leads are projected with.
func (r *Records) Schema() *model.Schema {
	return r.schema
}

// Replace swaps in a freshly fetched snapshot. The newest applied edit of each
// cell is reapplied on top of it when it resolved at or after fetchStarted,
// since the fetch may have read the sheet before the write landed. This holds
// even while a newer edit to the cell is still Sending. Older applied edits
// are dropped.
// It reports whether the rows or alerts differ from what the store held.
func (r *Records) Replace(snap *client.Snapshot, fetchStarted time.Time) bool {
	if snap == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := *snap
	next.Rows = make([]model.Row, len(snap.Rows))
	for i, row := range snap.Rows {
		next.Rows[i] = row.Clone()
	}

	kept := r.applied[:0]
	for _, e := range r.applied {
		if e.resolvedAt.Before(fetchStarted) {
			if r.latest[e.key()] == e {
				delete(r.latest, e.key())
			}
			if r.confirmed[e.key()] == e {
				delete(r.confirmed, e.key())
			}
			continue
		}
		kept = append(kept, e)
		if r.confirmed[e.key()] == e && e.Row < len(next.Rows) {
			next.Rows[e.Row].Set(e.Col, e.Value)
		}
	}
	clear(r.applied[len(kept):])
	r.applied = kept

	for k, e := range r.latest {
		if e.state == model.EditRejected && e.resolvedAt.Before(fetchStarted) {
			delete(r.latest, k)
		}
	}

	changed := !rowsEqual(r.snap.Rows, next.Rows) || !slices.Equal(r.snap.Alerts, next.Alerts)

	r.snap = &next
	r.leads = r.schema.Leads(next.Rows)
	return changed
}

func rowsEqual(a, b []model.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (r *Records) Snapshot() *client.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Loaded reports whether a snapshot has been stored.
func (r *Records) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.snap.FetchedAt.IsZero()
}

// Leads returns the projected leads in store order.
func (r *Records) Leads() []model.Lead {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.leads)
}

// Lead returns the lead at index.
func (r *Records) Lead(index int) (model.Lead, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.leads) {
		return model.Lead{}, false
	}
	return r.leads[index], true
}

// Row returns the raw row at index.
func (r *Records) Row(index int) (model.Row, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.snap.Rows) {
		return model.Row{}, false
	}
	return r.snap.Rows[index].Clone(), true
}

// Headers returns the sheet headers.
func (r *Records) Headers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.snap.Headers)
}

// Columns returns the column definitions of the current snapshot.
func (r *Records) Columns() *model.ColumnDefs {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap.Columns
}

// Alerts returns the current alerts.
func (r *Records) Alerts() []model.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.snap.Alerts)
}

// Alert returns the alert with the given ID.
func (r *Records) Alert(id string) (model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.snap.Alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Alert{}, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
}

// RemoveAlert drops an alert locally after a successful dismiss.
func (r *Records) RemoveAlert(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.snap.Alerts, func(a model.Alert) bool { return a.ID == id })
	if i < 0 {
		return false
	}
	next := *r.snap
	next.Alerts = slices.Delete(slices.Clone(r.snap.Alerts), i, i+1)
	r.snap = &next
	return true
}

// EditState reports the state of the most recent edit to a cell, or Idle.
func (r *Records) EditState(row, col int) model.EditState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.latest[cellKey{row, col}]; ok {
		return e.state
	}
	return model.EditIdle
}

// Pending returns the edits currently Sending.
func (r *Records) Pending() []*Edit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Edit
	for _, e := range r.latest {
		if e.state == model.EditSending {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *Edit) int { return a.StartedAt.Compare(b.StartedAt) })
	return out
}

// EditOption configures a single edit.
type EditOption func(*Edit)

// WithActor records who initiated the edit.
func WithActor(actor string) EditOption {
	return func(e *Edit) { e.Actor = actor }
}

// BeginEdit starts an edit of cell (row, col). The returned edit is Sending;
// the store is not modified until Apply.
func (r *Records) BeginEdit(row, col int, value string, opts ...EditOption) (*Edit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row < 0 || row >= len(r.snap.Rows) {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	width := max(len(r.snap.Headers), len(r.snap.Rows[row].Values), model.ReservedColumns)
	if col < 0 || col >= width {
		return nil, fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}

	r.seq++
	e := &Edit{
		seq:       r.seq,
		ID:        r.newID(),
		Row:       row,
		Col:       col,
		Old:       r.snap.Rows[row].Value(col),
		Value:     value,
		StartedAt: r.now(),
		records:   r,
		state:     model.EditSending,
	}
	if f, ok := r.schema.Field(col); ok {
		e.Field = f
	}
	for _, opt := range opts {
		opt(e)
	}
	r.latest[e.key()] = e
	return e, nil
}

// patch writes value into a copy of the current snapshot.
func (r *Records) patch(row, col int, value string) {
	if row >= len(r.snap.Rows) {
		return
	}
	next := *r.snap
	next.Rows = slices.Clone(r.snap.Rows)
	patched := next.Rows[row].Clone()
	patched.Set(col, value)
	next.Rows[row] = patched
	r.snap = &next

	leads := slices.Clone(r.leads)
	leads[row] = r.schema.Lead(row, patched)
	r.leads = leads
}
