package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pandorascan/weather-scanner/internal/models"
)

// RedisCache implements Cache using redis. Reports are stored as JSON with a
// per-key TTL; a redis.Nil result is a miss, not an error.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache and verifies connectivity with a bounded
// ping so a misconfigured address fails at startup rather than on first request.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) key(k string) string {
	return keyPrefix + k
}

// Get implements Cache.Get. Returns false, nil on cache miss; false, err on error.
func (c *RedisCache) Get(ctx context.Context, key string) (models.WeatherReport, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return models.WeatherReport{}, false, nil
	}
	if err != nil {
		return models.WeatherReport{}, false, fmt.Errorf("redis get: %w", err)
	}
	var report models.WeatherReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return models.WeatherReport{}, false, fmt.Errorf("decode cached report: %w", err)
	}
	return report, true, nil
}

// Set implements Cache.Set.
func (c *RedisCache) Set(ctx context.Context, key string, value models.WeatherReport, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks if redis is reachable. Used for health checks.
func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close closes the redis client connections. Call during shutdown.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
