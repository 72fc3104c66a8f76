package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = keyNamespace + ":snapshot"

// SnapshotCache keeps the result of the last pipeline run per dataset so
// repeated report queries do not re-run the pipeline.
type SnapshotCache interface {
	Get(ctx context.Context, dataset string) (*sales.Snapshot, bool, error)
	Set(ctx context.Context, dataset string, snap *sales.Snapshot) error
	Invalidate(ctx context.Context, dataset string) error
	InvalidateAll(ctx context.Context) error
}

// NewSnapshotCache returns a Redis-backed cache when caching is enabled and an
// in-process TTL cache otherwise.
func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return NewMemorySnapshotCache(resolveTTL(cfg), nil), nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisSnapshotCache(client, ttl), nil
}

type memoryEntry struct {
	snap      *sales.Snapshot
	expiresAt time.Time
}

type memorySnapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemorySnapshotCache creates an in-process cache. now defaults to time.Now.
func NewMemorySnapshotCache(ttl time.Duration, now func() time.Time) SnapshotCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &memorySnapshotCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memorySnapshotCache) Get(ctx context.Context, dataset string) (*sales.Snapshot, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[dataset]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[dataset]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, dataset)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.snap, true, nil
}

func (c *memorySnapshotCache) Set(ctx context.Context, dataset string, snap *sales.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dataset] = memoryEntry{snap: snap, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *memorySnapshotCache) Invalidate(ctx context.Context, dataset string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, dataset)
	return nil
}

func (c *memorySnapshotCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

type redisSnapshotCache struct {
	store jsonStore
}

// NewRedisSnapshotCache stores snapshots as JSON under shopdash:snapshot:<dataset>.
func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) SnapshotCache {
	return &redisSnapshotCache{store: newJSONStore(client, ttl)}
}

func (c *redisSnapshotCache) Get(ctx context.Context, dataset string) (*sales.Snapshot, bool, error) {
	var snap sales.Snapshot
	ok, err := c.store.get(ctx, snapshotKey(dataset), &snap)
	if err != nil || !ok {
		return nil, false, err
	}
	return &snap, true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, dataset string, snap *sales.Snapshot) error {
	return c.store.set(ctx, snapshotKey(dataset), snap)
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context, dataset string) error {
	return c.store.delete(ctx, snapshotKey(dataset))
}

func (c *redisSnapshotCache) InvalidateAll(ctx context.Context) error {
	return c.store.deletePrefix(ctx, snapshotKeyPrefix)
}

type noopSnapshotCache struct{}

// NewNoopSnapshotCache disables snapshot caching.
func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (n *noopSnapshotCache) Get(ctx context.Context, dataset string) (*sales.Snapshot, bool, error) {
	return nil, false, nil
}

func (n *noopSnapshotCache) Set(ctx context.Context, dataset string, snap *sales.Snapshot) error {
	return nil
}

func (n *noopSnapshotCache) Invalidate(ctx context.Context, dataset string) error {
	return nil
}

func (n *noopSnapshotCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func snapshotKey(dataset string) string {
	return fmt.Sprintf("%s:%s", snapshotKeyPrefix, dataset)
}
