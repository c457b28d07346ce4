// Package cache provides TTL caches for analysis results.
package cache

import (
	"context"
	"strings"
	"time"

	"MarketConfluence/internal/model"
)

// AllTimeframes is the key suffix used for multi-timeframe results.
const AllTimeframes = "ALL"

// Store is a TTL key/value cache. Implementations must be safe for concurrent use.
// A failed backend read is reported as a miss.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
}

// Key builds the cache key for one symbol and timeframe.
func Key(symbol string, tf model.Timeframe) string {
	return strings.ToUpper(symbol) + "|" + string(tf)
}

// AllKey builds the cache key for a symbol's multi-timeframe result.
func AllKey(symbol string) string {
	return strings.ToUpper(symbol) + "|" + AllTimeframes
}
