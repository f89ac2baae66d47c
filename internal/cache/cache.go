// Package cache provides a bounded, time-to-live cache that runs at most one
// computation per key at a time.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"heartpanel/internal/metrics"
)

var tracer = otel.Tracer("heartpanel/cache")

// Cache memoizes computed values per key. Entries expire after a fixed TTL
// measured from insertion; once Size entries exist the least recently used is
// evicted. Errors are never cached.
type Cache[V any] struct {
	name    string
	ttl     time.Duration
	entries *expirable.LRU[string, V]
	group   singleflight.Group
	metrics *metrics.Metrics
}

// New creates a cache. m may be nil.
func New[V any](name string, size int, ttl time.Duration, m *metrics.Metrics) *Cache[V] {
	return &Cache[V]{
		name:    name,
		ttl:     ttl,
		entries: expirable.NewLRU[string, V](size, nil, ttl),
		metrics: m,
	}
}

// Name returns the cache name used in metrics and spans
func (c *Cache[V]) Name() string { return c.name }

// TTL returns the entry lifetime
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// GetOrCompute returns the cached value for key or runs compute once, even
// under concurrent callers, and stores its result. Callers must not mutate the
// returned value; concurrent callers receive the same value.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	ctx, span := tracer.Start(ctx, "cache.Cache.GetOrCompute",
		trace.WithAttributes(attribute.String("cache", c.name)),
	)
	defer span.End()

	if v, ok := c.entries.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		c.metrics.ObserveCacheLookup(c.name, true)
		return v, nil
	}
	c.metrics.ObserveCacheLookup(c.name, false)

	resultI, err, shared := c.group.Do(key, func() (any, error) {
		// another caller may have filled it between the lookup and Do
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.metrics.IncrementComputation(c.name)
		c.entries.Add(key, v)
		return v, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero V
		return zero, err
	}

	v, ok := resultI.(V)
	if !ok {
		err := fmt.Errorf("cache %s: unexpected value type %T", c.name, resultI)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero V
		return zero, err
	}
	span.SetAttributes(attribute.Bool("cache_hit", false), attribute.Bool("shared", shared))
	return v, nil
}

// Len returns the number of live entries
func (c *Cache[V]) Len() int { return c.entries.Len() }

// Purge drops every entry
func (c *Cache[V]) Purge() { c.entries.Purge() }
