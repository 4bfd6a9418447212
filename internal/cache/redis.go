package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"example.com/factory/services/fulfillment/config"
)

const lotSizeThresholdKey = "fulfillment:settings:lot-size-threshold"

// RedisCache provides caching and runtime settings storage using Redis
type RedisCache struct {
	client         *redis.Client
	enabled        bool
	defaultLotSize int
}

// NewRedisCache creates a new Redis cache. When disabled, reads fall back
// to configured defaults and writes fail. An unreachable server also yields
// a disabled cache alongside the error, so callers keep a usable fallback
// instead of a nil handle.
func NewRedisCache(cfg config.RedisConfig, defaultLotSize int) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false, defaultLotSize: defaultLotSize}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return &RedisCache{enabled: false, defaultLotSize: defaultLotSize},
			errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client:         client,
		enabled:        true,
		defaultLotSize: defaultLotSize,
	}, nil
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return errors.New("cache is disabled")
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return errors.Wrap(err, "key not found in cache")
		}
		return errors.Wrap(err, "failed to get value from Redis")
	}
	if err := json.Unmarshal(data, value); err != nil {
		return errors.Wrap(err, "failed to unmarshal cached value")
	}
	return nil
}

// Set stores a value in cache with optional expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.enabled {
		return errors.New("cache is disabled")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for cache")
	}
	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return errors.Wrap(err, "failed to set value in Redis")
	}
	return nil
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return errors.New("cache is disabled")
	}
	return c.client.Del(ctx, key).Err()
}

// LotSizeThreshold reads the admin-configured lot size threshold. Falls
// back to the configured default when unset or when the cache is disabled.
func (c *RedisCache) LotSizeThreshold(ctx context.Context) int {
	if !c.enabled {
		return c.defaultLotSize
	}
	raw, err := c.client.Get(ctx, lotSizeThresholdKey).Result()
	if err != nil {
		return c.defaultLotSize
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil || threshold <= 0 {
		return c.defaultLotSize
	}
	return threshold
}

// SetLotSizeThreshold stores the lot size threshold
func (c *RedisCache) SetLotSizeThreshold(ctx context.Context, threshold int) error {
	if threshold <= 0 {
		return errors.New("lot size threshold must be positive")
	}
	if !c.enabled {
		return errors.New("cache is disabled")
	}
	err := c.client.Set(ctx, lotSizeThresholdKey, strconv.Itoa(threshold), 0).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store lot size threshold")
	}
	return nil
}
