package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
)

const reportKeyPrefix = keyNamespace + ":report"

// ReportCache stores computed report payloads keyed by report kind and query
// parameters. Entries are dropped wholesale whenever a refresh lands.
type ReportCache interface {
	Get(ctx context.Context, kind string, params map[string]string, dest any) (bool, error)
	Set(ctx context.Context, kind string, params map[string]string, value any) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	store jsonStore
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{store: newJSONStore(client, ttl)}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, kind string, params map[string]string, dest any) (bool, error) {
	return c.store.get(ctx, buildReportKey(kind, params), dest)
}

func (c *redisReportCache) Set(ctx context.Context, kind string, params map[string]string, value any) error {
	return c.store.set(ctx, buildReportKey(kind, params), value)
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return c.store.deletePrefix(ctx, reportKeyPrefix)
}

func (n *noopReportCache) Get(ctx context.Context, kind string, params map[string]string, dest any) (bool, error) {
	return false, nil
}

func (n *noopReportCache) Set(ctx context.Context, kind string, params map[string]string, value any) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(kind string, params map[string]string) string {
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix, strings.ToLower(kind), reportParamsHash(params))
}

func reportParamsHash(params map[string]string) string {
	parts := make([]string, 0, len(params))
	for k, v := range params {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		// SKU lists are order-insensitive
		if strings.Contains(v, ",") {
			v = joinStrings(strings.Split(v, ","))
		}
		parts = append(parts, k+"="+v)
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			c = append(c, v)
		}
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
