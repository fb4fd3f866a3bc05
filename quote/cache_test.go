package quote_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"papertrade/quote"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int32
	q     *quote.Quote
	err   error
}

func (p *countingProvider) Lookup(context.Context, string) (*quote.Quote, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	return p.q, nil
}

func newCacheFixture(t *testing.T, inner *countingProvider, ttl time.Duration) (*quote.Cached, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return quote.NewCached(inner, rdb, ttl), mr
}

func TestCachedLookupHitsProviderOnce(t *testing.T) {
	inner := &countingProvider{q: &quote.Quote{
		Symbol: "AAPL", Name: "Apple Inc", Price: decimal.RequireFromString("150.00"),
	}}
	cached, _ := newCacheFixture(t, inner, time.Minute)

	for i := 0; i < 3; i++ {
		q, err := cached.Lookup(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", q.Symbol)
		assert.True(t, q.Price.Equal(decimal.RequireFromString("150.00")))
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&inner.calls))
}

func TestCachedLookupExpiry(t *testing.T) {
	inner := &countingProvider{q: &quote.Quote{
		Symbol: "AAPL", Name: "Apple Inc", Price: decimal.RequireFromString("150.00"),
	}}
	cached, mr := newCacheFixture(t, inner, time.Minute)

	_, err := cached.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cached.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&inner.calls))
}

func TestCachedLookupDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: quote.ErrNotFound}
	cached, _ := newCacheFixture(t, inner, time.Minute)

	_, err := cached.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, quote.ErrNotFound)
	_, err = cached.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, quote.ErrNotFound)
	assert.EqualValues(t, 2, atomic.LoadInt32(&inner.calls))
}
