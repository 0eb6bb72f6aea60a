package cache

import (
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a process-wide map whose entries expire after a fixed TTL.
// Expiry is checked on read against the injected clock.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	ttl   time.Duration
	clock coreport.TimeProvider
}

// NewTTLCache creates a cache whose entries live for ttl
func NewTTLCache[K comparable, V any](ttl time.Duration, clock coreport.TimeProvider) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: make(map[K]entry[V]),
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns the value if present and not expired
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || !c.clock.Now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for the default TTL
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.SetUntil(key, value, c.clock.Now().Add(c.ttl))
}

// SetUntil stores value until expiresAt, capped at the default TTL
func (c *TTLCache[K, V]) SetUntil(key K, value V, expiresAt time.Time) {
	if limit := c.clock.Now().Add(c.ttl); expiresAt.After(limit) {
		expiresAt = limit
	}

	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete evicts key
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Purge drops expired entries and returns how many were removed
func (c *TTLCache[K, V]) Purge() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
