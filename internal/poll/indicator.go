package poll

import (
	"sync"
	"time"
)

// DefaultIndicatorTTL is how long the new-data indicator stays on.
const DefaultIndicatorTTL = 3 * time.Second

// Clock abstracts timer creation for tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of *time.Timer the indicator uses.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Indicator is the "new data" flag. It turns on when fired and clears itself
// after its TTL. Firing while on restarts the TTL.
type Indicator struct {
	mu       sync.Mutex
	ttl      time.Duration
	clock    Clock
	active   bool
	gen      uint64
	timer    Timer
	firedAt  time.Time
	onChange []func(bool)
}

// NewIndicator creates an indicator with the given TTL. A nil clock uses
// the wall clock.
func NewIndicator(ttl time.Duration, clock Clock) *Indicator {
	if ttl <= 0 {
		ttl = DefaultIndicatorTTL
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Indicator{ttl: ttl, clock: clock}
}

// OnChange registers a hook called with the new state on every transition.
func (i *Indicator) OnChange(fn func(bool)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onChange = append(i.onChange, fn)
}

// Fire turns the indicator on and schedules its auto-clear.
func (i *Indicator) Fire() {
	i.mu.Lock()
	if i.timer != nil {
		i.timer.Stop()
	}
	i.gen++
	gen := i.gen
	wasActive := i.active
	i.active = true
	i.firedAt = i.clock.Now()
	i.timer = i.clock.AfterFunc(i.ttl, func() { i.expire(gen) })
	hooks := i.onChange
	i.mu.Unlock()

	if !wasActive {
		for _, fn := range hooks {
			fn(true)
		}
	}
}

// expire clears the indicator unless it was re-fired since gen was issued.
func (i *Indicator) expire(gen uint64) {
	i.mu.Lock()
	if gen != i.gen || !i.active {
		i.mu.Unlock()
		return
	}
	i.active = false
	i.timer = nil
	hooks := i.onChange
	i.mu.Unlock()

	for _, fn := range hooks {
		fn(false)
	}
}

// Active reports whether the indicator is on.
func (i *Indicator) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// FiredAt returns when the indicator last turned on.
func (i *Indicator) FiredAt() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.firedAt
}

// Stop cancels a pending auto-clear and turns the indicator off. Hooks see
// the transition the same as an expiry.
func (i *Indicator) Stop() {
	i.mu.Lock()
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	i.gen++
	wasActive := i.active
	i.active = false
	hooks := i.onChange
	i.mu.Unlock()

	if wasActive {
		for _, fn := range hooks {
			fn(false)
		}
	}
}
