package store

import (
	"context"
	"slices"
	"sync"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

// DefaultEditLimit is used when an EditFilter sets no limit.
const DefaultEditLimit = 50

// EditFilter selects journaled edits.
type EditFilter struct {
	RowIndex *int
	Limit    int
}

// Journal persists the outcome of cell edits.
type Journal interface {
	RecordEdit(ctx context.Context, rec *model.EditRecord) error
	// ListEdits returns edits newest first.
	ListEdits(ctx context.Context, filter EditFilter) ([]*model.EditRecord, error)
	Close() error
}

// NoopJournal discards every edit. Used when no database is configured.
type NoopJournal struct{}

func (NoopJournal) RecordEdit(context.Context, *model.EditRecord) error { return nil }

func (NoopJournal) ListEdits(context.Context, EditFilter) ([]*model.EditRecord, error) {
	return nil, nil
}

func (NoopJournal) Close() error { return nil }

// MemoryJournal keeps edits in process memory.
type MemoryJournal struct {
	mu    sync.Mutex
	edits []*model.EditRecord
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) RecordEdit(_ context.Context, rec *model.EditRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	cp := *rec
	j.edits = append(j.edits, &cp)
	return nil
}

func (j *MemoryJournal) ListEdits(_ context.Context, filter EditFilter) ([]*model.EditRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultEditLimit
	}
	var out []*model.EditRecord
	for _, rec := range slices.Backward(j.edits) {
		if filter.RowIndex != nil && rec.RowIndex != *filter.RowIndex {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (j *MemoryJournal) Close() error { return nil }
