package eligibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingChecker records how often the slow path runs.
type countingChecker struct {
	eligible bool
	err      error
	calls    int
}

func (c *countingChecker) IsEligible(context.Context, string) (bool, error) {
	c.calls++
	return c.eligible, c.err
}

func TestCacheHitsLocalFirst(t *testing.T) {
	inner := &countingChecker{eligible: true}
	cache := NewCache(inner, nil, time.Minute)

	for i := 0; i < 5; i++ {
		eligible, err := cache.IsEligible(context.Background(), "0xAA")
		require.NoError(t, err)
		assert.True(t, eligible)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCacheStoresNegativeResults(t *testing.T) {
	inner := &countingChecker{eligible: false}
	cache := NewCache(inner, nil, time.Minute)

	eligible, err := cache.IsEligible(context.Background(), "0xBB")
	require.NoError(t, err)
	assert.False(t, eligible)

	eligible, _ = cache.IsEligible(context.Background(), "0xBB")
	assert.False(t, eligible)
	assert.Equal(t, 1, inner.calls)
}

func TestCacheKeyIsCaseInsensitive(t *testing.T) {
	inner := &countingChecker{eligible: true}
	cache := NewCache(inner, nil, time.Minute)

	cache.IsEligible(context.Background(), "0xAbCd")
	cache.IsEligible(context.Background(), "0xABCD")
	assert.Equal(t, 1, inner.calls)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	inner := &countingChecker{err: errors.New("rpc down")}
	cache := NewCache(inner, nil, time.Minute)

	_, err := cache.IsEligible(context.Background(), "0xCC")
	require.Error(t, err)

	// the failure clears: the next attempt hits the checker again
	inner.err = nil
	inner.eligible = true
	eligible, err := cache.IsEligible(context.Background(), "0xCC")
	require.NoError(t, err)
	assert.True(t, eligible)
	assert.Equal(t, 2, inner.calls)
}

func TestCacheExpiry(t *testing.T) {
	inner := &countingChecker{eligible: true}
	cache := NewCache(inner, nil, 20*time.Millisecond)

	cache.IsEligible(context.Background(), "0xDD")
	time.Sleep(40 * time.Millisecond)
	cache.IsEligible(context.Background(), "0xDD")
	assert.Equal(t, 2, inner.calls)
}

func TestStaticChecker(t *testing.T) {
	eligible, err := Static(true).IsEligible(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, eligible)

	eligible, _ = Static(false).IsEligible(context.Background(), "anything")
	assert.False(t, eligible)
}
