package cache

import (
	"context"
	"time"
)

// Tiered checks a local store before a shared one and back-fills the local store on shared hits.
type Tiered[V any] struct {
	l1        Store[V]
	l2        Store[V]
	refillTTL time.Duration
}

// NewTiered layers l1 over l2. l2 may be nil. Values found in l2 are copied into l1 for refillTTL.
func NewTiered[V any](l1, l2 Store[V], refillTTL time.Duration) *Tiered[V] {
	return &Tiered[V]{l1: l1, l2: l2, refillTTL: refillTTL}
}

// Get returns the first hit, L1 first.
func (t *Tiered[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := t.l1.Get(ctx, key); ok {
		return v, true
	}
	if t.l2 == nil {
		var zero V
		return zero, false
	}
	v, ok := t.l2.Get(ctx, key)
	if ok {
		t.l1.Set(ctx, key, v, t.refillTTL)
	}
	return v, ok
}

// Set writes to both tiers.
func (t *Tiered[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	t.l1.Set(ctx, key, value, ttl)
	if t.l2 != nil {
		t.l2.Set(ctx, key, value, ttl)
	}
}
