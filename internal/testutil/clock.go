package testutil

import (
	"sync"
	"time"

	"github.com/steppet/steppet-engine/internal/model"
)

// ManualClock is a model.Clock whose time only moves when the test says so.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*ManualTicker
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward without firing tickers; ticks are driven
// explicitly through ManualTicker.Fire.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *ManualClock) NewTicker(d time.Duration) model.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ManualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// LastTicker returns the most recently created ticker, or nil.
func (c *ManualClock) LastTicker() *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// ManualTicker fires only when the test calls Fire.
type ManualTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

func (t *ManualTicker) C() <-chan time.Time { return t.ch }

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire delivers one tick. The send blocks until the consumer receives, so a
// test observes the tick's effects after Fire returns only if the consumer
// signals completion separately.
func (t *ManualTicker) Fire(at time.Time) {
	t.ch <- at
}
