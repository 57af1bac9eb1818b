package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds catalog listings. A miss is reported as nil, nil.
type Cache interface {
	Get(ctx context.Context, kind Kind) ([]Entry, error)
	Set(ctx context.Context, kind Kind, entries []Entry) error
	Invalidate(ctx context.Context, kind Kind) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "portal:catalog:"}
}

func (c *RedisCache) key(kind Kind) string {
	return c.prefix + string(kind)
}

func (c *RedisCache) Get(ctx context.Context, kind Kind) ([]Entry, error) {
	raw, err := c.client.Get(ctx, c.key(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog cache: %w", err)
	}
	return entries, nil
}

func (c *RedisCache) Set(ctx context.Context, kind Kind, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode catalog cache: %w", err)
	}
	return c.client.Set(ctx, c.key(kind), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, kind Kind) error {
	return c.client.Del(ctx, c.key(kind)).Err()
}
