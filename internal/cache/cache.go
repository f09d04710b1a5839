// Package cache is the in-process read-through cache that sits in front of
// the region store. Entries carry a TTL and optional tags; expired entries
// are dropped lazily on read and by the janitor sweep.
package cache

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"regional-storefront-go/internal/logger"
)

// Invalidator drops every entry carrying one of the given tags.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string)
}

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
	tags     []string
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.storedAt.Add(e.ttl))
}

// Cache is a process-local TTL cache with tag and pattern invalidation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	tags    map[string]map[string]struct{}

	now     func() time.Time
	flight  *singleflight.Group
	metrics *Metrics
	log     logger.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithSingleFlight collapses concurrent misses for the same key in WithCache
// into one fetch.
func WithSingleFlight(enabled bool) Option {
	return func(c *Cache) {
		if enabled {
			c.flight = &singleflight.Group{}
		} else {
			c.flight = nil
		}
	}
}

// WithMetrics records hits, misses and evictions.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLogger sets the logger used for invalidation events.
func WithLogger(log logger.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Cache) Set(key string, value any, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		c.Delete(key)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(key)
	e := &entry{
		value:    value,
		storedAt: c.now(),
		ttl:      ttl,
		tags:     append([]string(nil), tags...),
	}
	c.entries[key] = e
	for _, tag := range e.tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Get returns the value for key if present and fresh. An expired entry is
// purged and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	return c.lookup(key, true)
}

func (c *Cache) lookup(key string, record bool) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && e.expired(c.now()) {
		c.removeLocked(key)
		c.metrics.evicted(reasonExpired, 1)
		ok = false
	}
	if record {
		if ok {
			c.metrics.hit()
		} else {
			c.metrics.miss()
		}
	}
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Delete removes key. It reports whether the key was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.removeLocked(key) {
		return false
	}
	c.metrics.evicted(reasonDeleted, 1)
	return true
}

// ClearPattern removes every key matching the regular expression and
// returns how many were removed.
func (c *Cache) ClearPattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile cache pattern %q: %w", pattern, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			c.removeLocked(key)
			removed++
		}
	}
	c.metrics.evicted(reasonPattern, removed)
	return removed, nil
}

// InvalidateTag removes every entry stored with tag.
func (c *Cache) InvalidateTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.tags[tag]
	removed := 0
	for key := range keys {
		if c.removeLocked(key) {
			removed++
		}
	}
	delete(c.tags, tag)
	c.metrics.evicted(reasonTag, removed)
	return removed
}

// Invalidate implements Invalidator for this process only.
func (c *Cache) Invalidate(_ context.Context, tags ...string) {
	for _, tag := range tags {
		n := c.InvalidateTag(tag)
		c.log.Debug("Cache tag invalidated",
			logger.String("tag", tag),
			logger.Int("removed", n),
		)
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*entry)
	c.tags = make(map[string]map[string]struct{})
	c.metrics.evicted(reasonPattern, n)
}

// Len returns the number of stored entries, fresh or not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep purges all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			c.removeLocked(key)
			removed++
		}
	}
	c.metrics.evicted(reasonExpired, removed)
	return removed
}

// RunJanitor sweeps expired entries every interval until ctx is done.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.log.Debug("Cache janitor swept expired entries", logger.Int("removed", n))
			}
		}
	}
}

// removeLocked deletes key and unlinks it from its tags. c.mu must be held.
func (c *Cache) removeLocked(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	for _, tag := range e.tags {
		if keys, ok := c.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
	return true
}

// WithCache returns the cached value for key, or calls fetch, stores its
// result with ttl and tags, and returns it. Fetch errors are never cached.
// A cached value of a different type than T is treated as a miss.
func WithCache[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error), tags ...string) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	if c.flight == nil {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		c.Set(key, v, ttl, tags...)
		return v, nil
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		// A caller that lost the race may find the winner's value already stored.
		if cached, ok := c.lookup(key, false); ok {
			if typed, ok := cached.(T); ok {
				return typed, nil
			}
		}
		fetched, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.Set(key, fetched, ttl, tags...)
		return fetched, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, _ := res.Val.(T)
		return typed, nil
	}
}
