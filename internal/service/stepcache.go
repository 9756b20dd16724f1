package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/observability"
)

// DefaultCacheTTL bounds how long a cumulative total is served without
// recomputation.
const DefaultCacheTTL = time.Hour

type cachedTotal struct {
	value      int64
	capturedAt time.Time
	baseline   time.Time
}

// StepCache is a time-bounded cache of the cumulative step total for one
// baseline window. It holds at most one entry; at most one fetch per
// baseline is in flight at a time and concurrent callers share its result.
type StepCache struct {
	provider model.StepProvider
	clock    model.Clock
	ttl      time.Duration
	logger   *logger.Logger

	mu         sync.Mutex
	entry      *cachedTotal
	authWarned bool

	group singleflight.Group
}

func NewStepCache(provider model.StepProvider, clock model.Clock, ttl time.Duration, logger *logger.Logger) *StepCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &StepCache{
		provider: provider,
		clock:    clock,
		ttl:      ttl,
		logger:   logger,
	}
}

// Get returns the cumulative total for the window [baseline, now). A fresh
// cached value for the same baseline is returned without touching the
// provider. On a transient fetch failure the entry is not written and the
// previous cached value (or 0) is returned alongside the error.
func (c *StepCache) Get(ctx context.Context, baseline time.Time) (int64, error) {
	c.mu.Lock()
	if e := c.entry; e != nil && e.baseline.Equal(baseline) && c.clock.Now().Sub(e.capturedAt) < c.ttl {
		value := e.value
		c.mu.Unlock()
		observability.RecordCacheHit()
		return value, nil
	}
	c.mu.Unlock()

	observability.RecordCacheMiss()

	key := baseline.UTC().Format(time.RFC3339Nano)
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, baseline)
	})
	if err != nil {
		return c.fallback(baseline), err
	}
	return v.(int64), nil
}

// Invalidate clears the entry so the next Get refetches. Used for explicit
// user-initiated refresh.
func (c *StepCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

func (c *StepCache) fetch(ctx context.Context, baseline time.Time) (int64, error) {
	now := c.clock.Now()
	value, err := c.provider.FetchCumulativeSteps(ctx, baseline, now)
	switch {
	case err == nil:
		observability.RecordProviderFetch(observability.FetchOutcomeOK)
	case errors.Is(err, model.ErrProviderUnavailable):
		// Absence of read access resolves to 0 and is cached until
		// expiry, otherwise every poll would hammer the provider.
		observability.RecordProviderFetch(observability.FetchOutcomeUnavailable)
		c.warnUnauthorized(err)
		value = 0
	default:
		observability.RecordProviderFetch(observability.FetchOutcomeFailed)
		return 0, fmt.Errorf("failed to fetch cumulative steps: %w", err)
	}

	c.mu.Lock()
	c.entry = &cachedTotal{value: value, capturedAt: now, baseline: baseline}
	c.mu.Unlock()

	return value, nil
}

func (c *StepCache) fallback(baseline time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entry; e != nil && e.baseline.Equal(baseline) {
		return e.value
	}
	return 0
}

// warnUnauthorized logs the missing-authorization condition once per process
// so the UI layer can surface a single re-authorization prompt.
func (c *StepCache) warnUnauthorized(err error) {
	c.mu.Lock()
	warned := c.authWarned
	c.authWarned = true
	c.mu.Unlock()
	if !warned {
		c.logger.Warn("Step cache: provider unavailable, totals read as 0 until authorized",
			"error", err.Error())
	}
}
