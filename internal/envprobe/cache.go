package envprobe

import (
	"context"
	"sync"
	"time"

	"github.com/nethalo/sqlsentinel/internal/clock"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// cacheLifetime is the 5-minute process-wide cache lifetime for the
// environment context, per database name.
const cacheLifetime = 5 * time.Minute

type cacheEntry struct {
	context  model.EnvironmentContext
	fetchedAt time.Time
}

// Cached wraps a Probe with a 5-minute, database-name-keyed cache.
// Entries are immutable after fill; invalidation is lifetime-only, as
// the engine's shared-resource model requires.
type Cached struct {
	inner Probe
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCached wraps inner with a clock-driven TTL cache.
func NewCached(inner Probe, c clock.Clock) *Cached {
	return &Cached{inner: inner, clock: c, entries: make(map[string]cacheEntry)}
}

func (c *Cached) Collect(ctx context.Context, database string) (model.EnvironmentContext, error) {
	c.mu.Lock()
	if entry, ok := c.entries[database]; ok && c.clock.Now().Sub(entry.fetchedAt) < cacheLifetime {
		c.mu.Unlock()
		return entry.context, nil
	}
	c.mu.Unlock()

	fresh, err := c.inner.Collect(ctx, database)
	if err != nil {
		return model.EnvironmentContext{}, err
	}

	c.mu.Lock()
	c.entries[database] = cacheEntry{context: fresh, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
	return fresh, nil
}
