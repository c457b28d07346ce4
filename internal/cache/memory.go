package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value  V
	expiry time.Time
}

// Memory is an in-process TTL cache bounded to maxEntries.
// When full it drops expired entries first, then the entry closest to expiry.
type Memory[V any] struct {
	mu         sync.Mutex
	items      map[string]entry[V]
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a Memory cache. A non-positive maxEntries means unbounded; now defaults to time.Now.
func NewMemory[V any](maxEntries int, now func() time.Time) *Memory[V] {
	if now == nil {
		now = time.Now
	}
	return &Memory[V]{items: make(map[string]entry[V]), maxEntries: maxEntries, now: now}
}

// Get returns the value for key if present and not expired.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !m.now().Before(e.expiry) {
		delete(m.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl is ignored.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.items[key]; !exists && m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.evict(now)
	}
	m.items[key] = entry[V]{value: value, expiry: now.Add(ttl)}
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// evict must be called with mu held.
func (m *Memory[V]) evict(now time.Time) {
	for k, e := range m.items {
		if !now.Before(e.expiry) {
			delete(m.items, k)
		}
	}
	if len(m.items) < m.maxEntries {
		return
	}
	var victim string
	var soonest time.Time
	for k, e := range m.items {
		if victim == "" || e.expiry.Before(soonest) {
			victim, soonest = k, e.expiry
		}
	}
	delete(m.items, victim)
}
