package store

import (
	"fmt"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/idgen"
	"github.com/alfredjeanlab/leadboard/internal/model"
)

func newEditID() string {
	return idgen.MustGenerate(idgen.EditPrefix)
}

// Edit is one cell write in flight. It moves Sending → Applied or
// Sending → Rejected exactly once.
type Edit struct {
	ID        string
	Row       int
	Col       int
	Field     model.Field
	Old       string
	Value     string
	Actor     string
	StartedAt time.Time

	records    *Records
	seq        uint64
	state      model.EditState
	err        error
	resolvedAt time.Time
}

func (e *Edit) key() cellKey {
	return cellKey{e.Row, e.Col}
}

// State returns the current state.
func (e *Edit) State() model.EditState {
	e.records.mu.RLock()
	defer e.records.mu.RUnlock()
	return e.state
}

// Err returns the rejection cause, if any.
func (e *Edit) Err() error {
	e.records.mu.RLock()
	defer e.records.mu.RUnlock()
	return e.err
}

// ResolvedAt returns when the edit became final, or the zero time.
func (e *Edit) ResolvedAt() time.Time {
	e.records.mu.RLock()
	defer e.records.mu.RUnlock()
	return e.resolvedAt
}

// Apply marks the write as confirmed by the sheet and patches the store,
// unless a newer edit to the same cell has since been begun.
func (e *Edit) Apply() error {
	r := e.records
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.state.IsFinal() {
		return fmt.Errorf("%w: %s is %s", ErrEditResolved, e.ID, e.state)
	}
	e.state = model.EditApplied
	e.resolvedAt = r.now()

	if c := r.confirmed[e.key()]; c == nil || c.seq < e.seq {
		r.confirmed[e.key()] = e
		r.applied = append(r.applied, e)
	}
	if r.latest[e.key()] == e {
		r.patch(e.Row, e.Col, e.Value)
	}
	return nil
}

// Reject marks the write as failed. The store is left unchanged, except that
// a rejected latest edit restores the cell to the newest applied value when
// one is still tracked.
func (e *Edit) Reject(cause error) error {
	r := e.records
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.state.IsFinal() {
		return fmt.Errorf("%w: %s is %s", ErrEditResolved, e.ID, e.state)
	}
	e.state = model.EditRejected
	e.err = cause
	e.resolvedAt = r.now()

	if c := r.confirmed[e.key()]; c != nil && r.latest[e.key()] == e && c.Row < len(r.snap.Rows) {
		if r.snap.Rows[c.Row].Value(c.Col) != c.Value {
			r.patch(c.Row, c.Col, c.Value)
		}
	}
	return nil
}

// Record returns the journal form of the edit.
func (e *Edit) Record() *model.EditRecord {
	r := e.records
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec := &model.EditRecord{
		ID:          e.ID,
		RowIndex:    e.Row,
		ColumnIndex: e.Col,
		Field:       string(e.Field),
		OldValue:    e.Old,
		NewValue:    e.Value,
		State:       e.state,
		Actor:       e.Actor,
		StartedAt:   e.StartedAt,
	}
	if e.err != nil {
		rec.Error = e.err.Error()
	}
	if !e.resolvedAt.IsZero() {
		t := e.resolvedAt
		rec.ResolvedAt = &t
	}
	return rec
}
