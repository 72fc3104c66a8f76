package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 10 * time.Minute
	scanBatchSize   = 100
	keyNamespace    = "shopdash"
)

func newRedisClient(cfg config.CacheConfig) (*redis.Client, time.Duration, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, 0, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, 0, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, resolveTTL(cfg), nil
}

func resolveTTL(cfg config.CacheConfig) time.Duration {
	ttl := cfg.SnapshotTTL()
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return ttl
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// jsonStore keeps JSON payloads in Redis with one TTL.
type jsonStore struct {
	client *redis.Client
	ttl    time.Duration
}

func newJSONStore(client *redis.Client, ttl time.Duration) jsonStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return jsonStore{client: client, ttl: ttl}
}

// get decodes key into dest; a missing key reports false without error.
func (s jsonStore) get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s jsonStore) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

func (s jsonStore) delete(ctx context.Context, key string) error {
	return s.client.Unlink(ctx, key).Err()
}

// deletePrefix unlinks every key under prefix, scanning in batches.
func (s jsonStore) deletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := prefix + ":*"
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis unlink failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}
