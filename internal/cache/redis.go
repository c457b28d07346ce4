package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a shared cache backed by Redis with JSON-encoded values.
// A nil client turns every call into a miss or a no-op.
type Redis[V any] struct {
	rdb       *redis.Client
	namespace string
}

// NewRedis creates a Redis cache. If namespace is empty, it uses "confluence".
func NewRedis[V any](rdb *redis.Client, namespace string) *Redis[V] {
	if namespace == "" {
		namespace = "confluence"
	}
	return &Redis[V]{rdb: rdb, namespace: namespace}
}

// Get reads and decodes key. Corrupted entries are deleted and reported as a miss.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	if r.rdb == nil {
		return zero, false
	}
	k := r.cacheKey(key)
	b, err := r.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[WARN] redis get %s failed: %v", k, err)
		}
		return zero, false
	}
	var out V
	if err := json.Unmarshal(b, &out); err != nil {
		log.Printf("[WARN] corrupted cache entry %s: %v", k, err)
		_ = r.rdb.Del(ctx, k).Err()
		return zero, false
	}
	return out, true
}

// Set encodes and stores value for ttl. Failures are logged, never returned.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	if r.rdb == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		log.Printf("[WARN] encode cache entry %s: %v", key, err)
		return
	}
	if err := r.rdb.Set(ctx, r.cacheKey(key), b, ttl).Err(); err != nil {
		log.Printf("[WARN] redis set %s failed: %v", key, err)
	}
}

func (r *Redis[V]) cacheKey(key string) string {
	return r.namespace + ":" + safe(key)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
