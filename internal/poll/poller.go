// Package poll refreshes the record store from the sheet API on a fixed
// interval and drives the new-data indicator.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/events"
	"github.com/alfredjeanlab/leadboard/internal/store"
)

// DefaultInterval is the poll period.
const DefaultInterval = 5 * time.Minute

// Fetcher is the part of client.SheetClient the poller needs.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*client.Snapshot, error)
}

// Options configures a Poller. Zero values pick defaults.
type Options struct {
	Interval     time.Duration
	IndicatorTTL time.Duration
	Clock        Clock
	Publisher    events.Publisher
	Logger       *slog.Logger
}

// Status is a point-in-time view of the poller.
type Status struct {
	LastUpdate time.Time `json:"last_update"`
	LastError  string    `json:"last_error,omitempty"`
	NewData    bool      `json:"new_data"`
	NewDataAt  time.Time `json:"new_data_at,omitzero"`
	Updating   bool      `json:"updating"`
	Polls      int       `json:"polls"`
	Failures   int       `json:"failures"`
}

// Poller periodically fetches a snapshot and replaces the store with it.
type Poller struct {
	fetcher   Fetcher
	records   *store.Records
	indicator *Indicator
	publisher events.Publisher
	interval  time.Duration
	clock     Clock
	logger    *slog.Logger

	mu         sync.Mutex
	lastUpdate time.Time
	lastErr    error
	inFlight   int
	polls      int
	failures   int
	onLoad     []func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a poller that feeds records from fetcher.
func New(fetcher Fetcher, records *store.Records, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Poller{
		fetcher:   fetcher,
		records:   records,
		indicator: NewIndicator(opts.IndicatorTTL, opts.Clock),
		publisher: opts.Publisher,
		interval:  opts.Interval,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Indicator returns the new-data indicator.
func (p *Poller) Indicator() *Indicator {
	return p.indicator
}

// OnLoad registers a hook run after every successful refresh.
func (p *Poller) OnLoad(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onLoad = append(p.onLoad, fn)
}

// Start begins polling. The initial load runs immediately without the
// indicator, then one notifying refresh per tick.
func (p *Poller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()
}

// Stop cancels polling and waits for the current fetch (if any) to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.indicator.Stop()
}

func (p *Poller) run(ctx context.Context) {
	// Initial load, no indicator.
	_ = p.Refresh(ctx, false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Refresh(ctx, true)
		}
	}
}

// Refresh fetches once and replaces the store on success. When notify is set
// and the rows or alerts changed, the indicator fires. A failed fetch leaves
// the store untouched.
func (p *Poller) Refresh(ctx context.Context, notify bool) error {
	p.mu.Lock()
	p.inFlight++
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	started := p.clock.Now()
	snap, err := p.fetcher.FetchSnapshot(ctx)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.failures++
		p.mu.Unlock()
		p.logger.Error("poll failed", "err", err)
		return err
	}

	changed := p.records.Replace(snap, started)

	p.mu.Lock()
	p.lastUpdate = p.clock.Now()
	p.lastErr = nil
	p.polls++
	hooks := p.onLoad
	p.mu.Unlock()

	leadCount, alertCount := len(snap.Rows), len(snap.Alerts)
	p.logger.Info("poll completed", "leads", leadCount, "alerts", alertCount, "changed", changed)

	if notify && changed {
		p.indicator.Fire()
		p.publish(ctx, events.TopicLeadsChanged, events.LeadsChanged{
			LeadCount:  leadCount,
			AlertCount: alertCount,
			FetchedAt:  snap.FetchedAt,
		})
	}
	p.publish(ctx, events.TopicLeadsRefreshed, events.LeadsRefreshed{
		LeadCount:  leadCount,
		AlertCount: alertCount,
		FetchedAt:  snap.FetchedAt,
		Changed:    changed,
	})

	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (p *Poller) publish(ctx context.Context, topic string, event any) {
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		p.logger.Warn("publish event failed", "topic", topic, "err", err)
	}
}

// Status reports the last outcome.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{
		LastUpdate: p.lastUpdate,
		NewData:    p.indicator.Active(),
		Updating:   p.inFlight > 0,
		Polls:      p.polls,
		Failures:   p.failures,
		NewDataAt:  p.indicator.FiredAt(),
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}
