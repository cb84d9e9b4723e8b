// Package query keeps the view state of the dashboard: cached entity lists
// that are refetched after every successful mutation, plus the mutation
// services that publish notifications.
package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ethicalpulse/dashboard/internal/ext"
)

type entry struct {
	value     interface{}
	fetchedAt time.Time
	stale     bool
}

// Cache stores fetched lists by key. Concurrent fetches of one key share a
// single call. Every key carries a generation that Invalidate bumps, so a
// fetch that began before an invalidation never lands as fresh data.
type Cache struct {
	ttl   time.Duration
	clock ext.Clock
	group singleflight.Group

	mu          sync.Mutex
	entries     map[string]*entry
	generations map[string]uint64
	inflight    map[string]int
}

// NewCache returns a cache. A ttl of zero keeps entries until invalidated.
func NewCache(ttl time.Duration, clock ext.Clock) *Cache {
	return &Cache{
		ttl:         ttl,
		clock:       clock,
		entries:     make(map[string]*entry),
		generations: make(map[string]uint64),
		inflight:    make(map[string]int),
	}
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.stale {
		return false
	}
	return c.ttl <= 0 || c.clock.Now().Sub(e.fetchedAt) < c.ttl
}

// Get returns the cached value for key or calls fetch. A failed fetch
// leaves any earlier value in place.
func (c *Cache) Get(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.freshLocked(e) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		gen := c.generations[key]
		c.generations[key] = gen
		c.inflight[key]++
		c.mu.Unlock()

		defer func() {
			c.mu.Lock()
			if c.inflight[key]--; c.inflight[key] <= 0 {
				delete(c.inflight, key)
			}
			c.mu.Unlock()
		}()

		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &entry{
			value:     value,
			fetchedAt: c.clock.Now(),
			stale:     c.generations[key] != gen,
		}
		c.mu.Unlock()
		return value, nil
	})
	return v, err
}

// Invalidate marks every key starting with prefix as stale. Callers that
// arrive after it start a new fetch instead of joining a running one.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.generations {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		c.generations[key]++
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
		c.group.Forget(key)
	}
}

// Loading reports whether a fetch for any key with prefix is running.
func (c *Cache) Loading(prefix string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// fetchList returns a copy of the cached list so callers cannot alter what
// later readers see.
func fetchList[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) ([]T, error)) ([]T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	list := v.([]T)
	out := make([]T, len(list))
	copy(out, list)
	return out, nil
}
