package statements

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/quillbooks/quillbooks/testing"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	view := View{
		ID:            7,
		StatementType: TypeBalanceSheet,
		PeriodStart:   "2026-01-01",
		PeriodEnd:     "2026-03-31",
		Items:         []ItemView{{AccountID: 1, Amount: decimal.NewFromInt(1300)}},
	}
	require.NoError(t, cache.Set(ctx, view))

	got, ok := cache.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, view.StatementType, got.StatementType)
	assert.Equal(t, view.PeriodStart, got.PeriodStart)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Amount.Equal(decimal.NewFromInt(1300)))
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	_, ok := cache.Get(context.Background(), 99)
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, View{ID: 1, StatementType: TypeIncomeStatement}))
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	assert.NoError(t, cache.Set(ctx, View{ID: 1}))
}
