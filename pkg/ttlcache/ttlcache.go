// Package ttlcache provides a concurrency-safe in-memory key-value
// store with per-entry expiry and a periodic background sweep.
//
// The cache is intended for non-sensitive, coarse-grained lookups.
// Credential verification results must never be stored here; that is a
// usage contract for callers, not something the types enforce.
package ttlcache

import (
	"sync"
	"time"

	"github.com/hawkkey/hawkkey-go/pkg/clock"
)

const (
	// DefaultTTL is the entry lifetime used when Set is called
	// without an explicit TTL.
	DefaultTTL = 5 * time.Minute

	// DefaultSweepInterval is how often the background sweep removes
	// expired entries. The sweep bounds memory for entries that are
	// written once and never re-read; Get is correct without it.
	DefaultSweepInterval = time.Minute
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Options configures a Cache.
type Options struct {
	DefaultTTL    time.Duration
	SweepInterval time.Duration
	Clock         clock.Clock
}

// Cache is a TTL-bounded map. The zero value is not usable; construct
// with New. A Cache owns a background sweep goroutine for its entire
// lifetime until Destroy is called.
type Cache[K comparable, V any] struct {
	mu         sync.RWMutex
	entries    map[K]entry[V]
	defaultTTL time.Duration
	clock      clock.Clock

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a cache and starts its background sweep.
func New[K comparable, V any](opts Options) *Cache[K, V] {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	c := &Cache[K, V]{
		entries:    make(map[K]entry[V]),
		defaultTTL: opts.DefaultTTL,
		clock:      opts.Clock,
		stopCh:     make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(opts.SweepInterval)

	return c
}

// Get returns the value for key if present and unexpired. An entry
// whose expiry has passed is deleted lazily and treated as absent,
// regardless of whether the sweep has run.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the entry since the read above.
		if cur, still := c.entries[key]; still && !c.clock.Now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache[K, V]) SetTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(ttl)}
}

// Has reports whether key is present and unexpired.
func (c *Cache[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len returns the number of stored entries. The count may include
// expired entries the sweep has not yet removed.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Destroy stops the background sweep and clears all entries. Intended
// for graceful shutdown; safe to call more than once.
func (c *Cache[K, V]) Destroy() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
	c.Clear()
}

func (c *Cache[K, V]) sweepLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

// sweep removes all currently-expired entries. Eviction of one key is
// independent of all others; the clock is the single source of truth
// shared with Get and Set.
func (c *Cache[K, V]) sweep() {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
