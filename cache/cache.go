package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultTTL is applied by Set when the caller passes a non-positive TTL.
const DefaultTTL = time.Hour

// entry holds a cached value with its absolute expiry.
type entry struct {
	value     string
	expiresAt time.Time
}

// Options configures a Cache. Zero values fall back to defaults.
type Options struct {
	// MaxEntries bounds the number of stored values. Default: 1000.
	MaxEntries int

	// DefaultTTL is used when Set is called with ttl <= 0. Default: 1h.
	DefaultTTL time.Duration

	// CleanupInterval is how often expired entries are pruned. Default: 5m.
	CleanupInterval time.Duration
}

// Cache is an in-memory string cache with per-entry time-to-live.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]entry
	maxEntries int
	defaultTTL time.Duration

	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Cache and starts a background goroutine that evicts
// expired entries every CleanupInterval. Call Close to stop it.
func New(opts Options) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 1000
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}

	c := &Cache{
		store:      make(map[string]entry),
		maxEntries: opts.MaxEntries,
		defaultTTL: opts.DefaultTTL,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop(opts.CleanupInterval)
	return c
}

// Key generates a cache key from the given parts.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte("|"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the value stored under key and whether it was a live hit.
// Expired entries are reported as a miss.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry and its expiry.
// A ttl <= 0 uses the cache's default TTL.
//
// If the cache is at capacity, expired entries are dropped first; if none
// were expired, an arbitrary entry is evicted to make room.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		c.evictLocked(now)
	}

	c.store[key] = entry{
		value:     value,
		expiresAt: now.Add(ttl),
	}
}

// Remove deletes key. Removing a missing key is a no-op.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, including expired ones not yet
// pruned.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// MaxEntries reports the capacity bound.
func (c *Cache) MaxEntries() int {
	return c.maxEntries
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.done) })
}

// evictLocked frees at least one slot. c.mu must be held for writing.
func (c *Cache) evictLocked(now time.Time) {
	c.pruneLocked(now)
	if len(c.store) < c.maxEntries {
		return
	}
	// Map iteration order is random in Go.
	for k := range c.store {
		delete(c.store, k)
		break
	}
}

func (c *Cache) pruneLocked(now time.Time) {
	for k, e := range c.store {
		if !now.Before(e.expiresAt) {
			delete(c.store, k)
		}
	}
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			c.pruneLocked(now)
			c.mu.Unlock()
		}
	}
}
