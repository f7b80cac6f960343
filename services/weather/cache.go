package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/samber/mo"

	"weatherbot/models"
)

// ReadingsCache stores converted readings keyed by LocationQuery.CacheKey
type ReadingsCache interface {
	Get(ctx context.Context, key string) (mo.Option[*models.WeatherReading], error)
	Set(ctx context.Context, key string, reading *models.WeatherReading) error
}

type RedisReadingsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisReadingsCache connects to the Redis instance at redisURL (redis://host:port/db)
func NewRedisReadingsCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisReadingsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReadingsCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisReadingsCache) Get(ctx context.Context, key string) (mo.Option[*models.WeatherReading], error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return mo.None[*models.WeatherReading](), nil
	}
	if err != nil {
		return mo.None[*models.WeatherReading](), fmt.Errorf("failed to get cached reading: %w", err)
	}

	var reading models.WeatherReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return mo.None[*models.WeatherReading](), fmt.Errorf("failed to decode cached reading: %w", err)
	}

	return mo.Some(&reading), nil
}

func (c *RedisReadingsCache) Set(ctx context.Context, key string, reading *models.WeatherReading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache reading: %w", err)
	}

	return nil
}

func (c *RedisReadingsCache) Close() error {
	return c.rdb.Close()
}

// OptionalReadingsCache never stores anything. Used when Redis is not configured.
type OptionalReadingsCache struct{}

func NewOptionalReadingsCache() *OptionalReadingsCache {
	return &OptionalReadingsCache{}
}

func (c *OptionalReadingsCache) Get(ctx context.Context, key string) (mo.Option[*models.WeatherReading], error) {
	return mo.None[*models.WeatherReading](), nil
}

func (c *OptionalReadingsCache) Set(ctx context.Context, key string, reading *models.WeatherReading) error {
	return nil
}
