package eligibility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Checker is the eligibility contract the matchmaker consumes.
type Checker interface {
	IsEligible(ctx context.Context, walletAddress string) (bool, error)
}

// Static is a fixed-answer checker. Used when no RPC endpoint is configured
// (demo deployments) and in tests.
type Static bool

// IsEligible always returns the configured answer.
func (s Static) IsEligible(context.Context, string) (bool, error) { return bool(s), nil }

// Cache layers a bounded-TTL cache over a slow checker: an in-process LRU
// first, then Redis (shared across instances), then the wrapped checker.
// Results (positive and negative alike) are cached for the TTL, bounding how
// hard the external balance check can be hammered.
type Cache struct {
	inner Checker
	local *expirable.LRU[string, bool]
	redis *redis.Client // optional
	ttl   time.Duration
}

// NewCache wraps inner with a TTL cache. redisClient may be nil.
func NewCache(inner Checker, redisClient *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		inner: inner,
		local: expirable.NewLRU[string, bool](1024, nil, ttl),
		redis: redisClient,
		ttl:   ttl,
	}
}

func cacheKey(wallet string) string {
	return fmt.Sprintf("elite:%s", strings.ToLower(wallet))
}

// IsEligible resolves through the cache layers. A wrapped-checker error is
// not cached, so a transient RPC failure clears on the next attempt.
func (c *Cache) IsEligible(ctx context.Context, walletAddress string) (bool, error) {
	key := cacheKey(walletAddress)

	if v, ok := c.local.Get(key); ok {
		return v, nil
	}
	if c.redis != nil {
		if v, err := c.redis.Get(ctx, key).Result(); err == nil {
			eligible := v == "1"
			c.local.Add(key, eligible)
			return eligible, nil
		}
	}

	eligible, err := c.inner.IsEligible(ctx, walletAddress)
	if err != nil {
		return false, err
	}

	c.local.Add(key, eligible)
	if c.redis != nil {
		val := "0"
		if eligible {
			val = "1"
		}
		c.redis.Set(ctx, key, val, c.ttl)
	}
	return eligible, nil
}
