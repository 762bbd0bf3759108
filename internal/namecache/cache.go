// Package namecache keeps the list of known package names and refreshes it
// from brew once it is older than the staleness window.
package namecache

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultStaleness is the age after which the name list is refreshed.
const DefaultStaleness = time.Minute

var refreshCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brewq",
		Subsystem: "namecache",
		Name:      "refresh_total",
		Help:      "Total number of name list refreshes, by outcome.",
	},
	[]string{"outcome"},
)

// Lister enumerates every known package name.
type Lister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// Cache holds the last known package names. The list is only ever replaced
// wholesale, and only while mu is held.
type Cache struct {
	lister    Lister
	store     Store
	staleness time.Duration
	now       func() time.Time

	mu          sync.Mutex
	loaded      bool
	names       []string
	lastRefresh time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStaleness sets the refresh window.
func WithStaleness(d time.Duration) Option {
	return func(c *Cache) { c.staleness = d }
}

// WithStore persists snapshots across processes.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// New returns an empty cache backed by l.
func New(l Lister, opts ...Option) *Cache {
	c := &Cache{lister: l, staleness: DefaultStaleness, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithNames refreshes the list if it is stale and calls fn with it. The lock is
// held across both steps, so a concurrent refresh cannot replace the list
// while fn scans it. fn must not retain names.
func (c *Cache) WithNames(ctx context.Context, fn func(names []string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureFresh(ctx)
	fn(c.names)
}

// Snapshot returns a copy of the current list and its refresh time without
// refreshing.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadStored()
	return Snapshot{RefreshedAt: c.lastRefresh, Names: slices.Clone(c.names)}
}

// Invalidate forces a refresh on the next WithNames call.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.lastRefresh = time.Time{}
}

func (c *Cache) ensureFresh(ctx context.Context) {
	c.loadStored()

	now := c.now()
	if now.Sub(c.lastRefresh) <= c.staleness {
		return
	}

	names, err := c.lister.ListNames(ctx)
	switch {
	case ctx.Err() != nil:
		refreshCounter.WithLabelValues("cancelled").Inc()
		return
	case err != nil && len(names) == 0:
		slog.WarnContext(ctx, "name list refresh failed, keeping previous list", "names", len(c.names), "reason", err)
		refreshCounter.WithLabelValues("failed").Inc()
		c.lastRefresh = now
		return
	}

	c.names = names
	c.lastRefresh = now
	refreshCounter.WithLabelValues("ok").Inc()
	slog.DebugContext(ctx, "name list refreshed", "names", len(names))

	if c.store != nil {
		if err := c.store.Save(Snapshot{RefreshedAt: now, Names: names}); err != nil {
			slog.WarnContext(ctx, "cannot persist name list", "reason", err)
		}
	}
}

// loadStored seeds the cache from the store once. Callers hold mu.
func (c *Cache) loadStored() {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.store == nil {
		return
	}
	snap, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("cannot load persisted name list", "reason", err)
		}
		return
	}
	c.names = snap.Names
	c.lastRefresh = snap.RefreshedAt
}
