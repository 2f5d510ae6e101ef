package cache

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type RedisCounterCache struct {
	client *redis.Client
}

func NewRedisCounterCache(addr string, password string, db int) *RedisCounterCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCounterCache{client: client}
}

func (c *RedisCounterCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCounterCache) Close() error {
	return c.client.Close()
}

func (c *RedisCounterCache) Get(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

func (c *RedisCounterCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	return c.client.Set(ctx, key, strconv.FormatInt(value, 10), ttl).Err()
}

func (c *RedisCounterCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
