// Package stats memoizes the dashboard counters so that every rendered page
// can carry them without hitting the database on each request.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
)

// DefaultWindow is how long a snapshot is served without recounting.
const DefaultWindow = 5 * time.Minute

// Counter is implemented by the store.
type Counter interface {
	StatsCounts(ctx context.Context) (models.Snapshot, error)
}

// Cache holds a single process-wide snapshot slot. Concurrent refreshes race
// benignly: the last writer wins and the value is an approximate display
// metric, never a correctness-critical figure.
type Cache struct {
	counter Counter
	window  time.Duration
	now     func() time.Time

	mu   sync.Mutex
	snap models.Snapshot
	has  bool
}

func NewCache(counter Counter) *Cache {
	return &Cache{counter: counter, window: DefaultWindow, now: time.Now}
}

// Get returns the cached snapshot when it is still inside the window and
// force is false; otherwise it recounts. Get never fails: when the store is
// unreachable it falls back to the previous snapshot, or to a zero-filled
// snapshot flagged with Error when none exists yet.
func (c *Cache) Get(ctx context.Context, force bool) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.has && !force && c.now().Sub(c.snap.CachedAt) < c.window {
		return c.snap
	}

	snap, err := c.counter.StatsCounts(ctx)
	if err != nil {
		slog.Error("Failed to fetch stats, serving fallback", "error", err)
		if c.has {
			return c.snap
		}
		return models.Snapshot{
			CacheDuration: int64(c.window.Seconds()),
			Error:         true,
		}
	}

	snap.CachedAt = c.now()
	snap.CacheDuration = int64(c.window.Seconds())
	c.snap = snap
	c.has = true
	return snap
}
