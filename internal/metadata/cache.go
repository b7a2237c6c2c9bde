package metadata

import (
	"context"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/bourse/internal/market"
)

var cacheMetrics = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "bourse_metadata_cache",
		Help: "Royalty lookups served by the metadata cache, by result.",
	},
	[]string{"result"},
)

// Cached memoizes successful lookups of a Source. Failed lookups are
// not cached, so a missing item is retried on every call.
type Cached struct {
	src   Source
	cache *cache.Cache[string, market.RoyaltyInfo]
	ttl   time.Duration
}

// NewCached wraps src with an LRU of the given capacity. Entries expire
// after ttl; a zero ttl keeps them until evicted.
func NewCached(src Source, capacity int, ttl time.Duration) *Cached {
	return &Cached{
		src:   src,
		cache: cache.New(cache.AsLRU[string, market.RoyaltyInfo](lru.WithCapacity(capacity))),
		ttl:   ttl,
	}
}

// RoyaltyInfo returns the cached policy of item, loading it on a miss.
func (c *Cached) RoyaltyInfo(ctx context.Context, item string) (market.RoyaltyInfo, error) {
	if info, ok := c.cache.Get(item); ok {
		cacheMetrics.WithLabelValues("hit").Inc()
		return clone(info), nil
	}
	cacheMetrics.WithLabelValues("miss").Inc()

	info, err := c.src.RoyaltyInfo(ctx, item)
	if err != nil {
		return market.RoyaltyInfo{}, err
	}
	var opts []cache.ItemOption
	if c.ttl > 0 {
		opts = append(opts, cache.WithExpiration(c.ttl))
	}
	c.cache.Set(item, clone(info), opts...)
	return info, nil
}

// Invalidate drops item so the next lookup reaches the source.
func (c *Cached) Invalidate(item string) {
	c.cache.Delete(item)
}
