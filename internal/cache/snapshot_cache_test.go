package cache

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestMemorySnapshotCacheExpires(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemorySnapshotCache(10*time.Minute, clock.Now)
	snap := &sales.Snapshot{SKUs: []string{"A"}}

	_, ok, err := c.Get(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "default", snap))

	got, ok, err := c.Get(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, snap, got)

	clock.now = clock.now.Add(9 * time.Minute)
	_, ok, _ = c.Get(ctx, "default")
	assert.True(t, ok)

	clock.now = clock.now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "default")
	assert.False(t, ok, "entry expires at exactly the TTL")
}

func TestMemorySnapshotCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySnapshotCache(time.Minute, nil)

	require.NoError(t, c.Set(ctx, "a", &sales.Snapshot{}))
	require.NoError(t, c.Set(ctx, "b", &sales.Snapshot{}))

	require.NoError(t, c.Invalidate(ctx, "a"))
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)

	require.NoError(t, c.InvalidateAll(ctx))
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestNoopSnapshotCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	c := NewNoopSnapshotCache()

	require.NoError(t, c.Set(ctx, "default", &sales.Snapshot{}))
	_, ok, err := c.Get(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSnapshotCacheDisabledUsesMemory(t *testing.T) {
	c, err := NewSnapshotCache(config.CacheConfig{Enabled: false, SnapshotTTLSeconds: 5})
	require.NoError(t, err)
	assert.IsType(t, &memorySnapshotCache{}, c)
	assert.Equal(t, 5*time.Second, c.(*memorySnapshotCache).ttl)
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@example.com:6379/1"})
	require.NoError(t, err)
	assert.Equal(t, "example.com:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestReportKeyIsStable(t *testing.T) {
	a := buildReportKey("Monthly", map[string]string{"year": "2024", "month": "3", "sku": "B,A"})
	b := buildReportKey("monthly", map[string]string{"month": " 3", "sku": "A, B", "year": "2024", "mode": ""})

	assert.Equal(t, a, b)
	assert.Equal(t, "shopdash:report:trend:default", buildReportKey("trend", nil))
	assert.NotEqual(t, a, buildReportKey("monthly", map[string]string{"year": "2024", "month": "4"}))
}

func TestNoopReportCache(t *testing.T) {
	c, err := NewReportCache(config.CacheConfig{})
	require.NoError(t, err)

	var dest map[string]int
	ok, err := c.Get(context.Background(), "pnl", nil, &dest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONStoreDefaultsTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, newJSONStore(nil, 0).ttl)
	assert.Equal(t, time.Minute, newJSONStore(nil, time.Minute).ttl)
}
