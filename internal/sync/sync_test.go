package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
)

// mockDestination records calls to Write.
type mockDestination struct {
	writes atomic.Int64
	last   atomic.Value // []byte
	err    error
}

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	d.writes.Add(1)
	cp := make([]byte, len(data))
	copy(cp, data)
	d.last.Store(cp)
	return d.err
}

type staticSource struct {
	snap *client.Snapshot
}

func (s staticSource) Snapshot() *client.Snapshot { return s.snap }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerStartStop(t *testing.T) {
	dest := &mockDestination{}

	sched := NewScheduler(staticSource{testSnapshot()}, []Destination{dest}, 50*time.Millisecond, discardLogger())
	sched.Start()

	// Wait for at least the initial sync + one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}

	data, ok := dest.last.Load().([]byte)
	if !ok || len(data) == 0 {
		t.Fatal("expected non-empty data")
	}

	lines := nonEmptyLines(string(data))
	// 1 header + 2 leads + 1 alert
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(staticSource{}, nil, time.Minute, discardLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSchedulerSkipsUnloaded(t *testing.T) {
	dest := &mockDestination{}
	sched := NewScheduler(staticSource{&client.Snapshot{}}, []Destination{dest}, time.Minute, discardLogger())
	sched.SyncOnce(context.Background())
	if dest.writes.Load() != 0 {
		t.Fatalf("unloaded source should not be exported, got %d writes", dest.writes.Load())
	}
}

func TestSchedulerMultipleDestinations(t *testing.T) {
	failing := &mockDestination{err: errors.New("bucket gone")}
	dest := &mockDestination{}

	sched := NewScheduler(staticSource{testSnapshot()}, []Destination{failing, dest}, time.Minute, discardLogger())
	sched.SyncOnce(context.Background())

	if failing.writes.Load() != 1 {
		t.Fatal("failing destination expected 1 write")
	}
	if dest.writes.Load() != 1 {
		t.Fatal("a failed destination should not block the next one")
	}
}
