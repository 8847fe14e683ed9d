// File: utils/cache.go
package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boxcric/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client.
var CacheClient *redis.Client

// InitCache connects the generic Redis cache client (REDIS_CACHE_DB).
func InitCache(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (Cache): %w", err)
	}
	CacheClient = client
	return client, nil
}

// VersionedCache stores JSON values under a namespace whose keys all embed a
// version counter. Invalidate bumps the counter so every old key is orphaned
// and left to expire. A nil *VersionedCache is a valid, always-missing cache.
type VersionedCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewVersionedCache(client *redis.Client, namespace string, ttl time.Duration) *VersionedCache {
	if client == nil {
		return nil
	}
	return &VersionedCache{client: client, namespace: namespace, ttl: ttl}
}

func (c *VersionedCache) versionKey() string {
	return c.namespace + ":version"
}

func (c *VersionedCache) key(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", c.namespace, version, key), nil
}

// Get decodes the cached value into dest and reports whether it was present.
func (c *VersionedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	k, err := c.key(ctx, key)
	if err != nil {
		return false, err
	}
	raw, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", k, err)
	}
	return true, nil
}

func (c *VersionedCache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	k, err := c.key(ctx, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, k, raw, c.ttl).Err()
}

func (c *VersionedCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, c.versionKey()).Err()
}
