package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoClient is returned by Cache operations when Redis is not available.
var ErrNoClient = errors.New("redis: no client")

// Cache stores JSON values under a key prefix.
type Cache struct {
	client func() *redis.Client
	prefix string
}

// NewCache uses the shared client, resolved on every call so a cache built
// before Initialize still works afterwards.
func NewCache(prefix string) *Cache {
	return &Cache{client: Client, prefix: prefix}
}

// NewCacheWithClient binds the cache to a specific client.
func NewCacheWithClient(c *redis.Client, prefix string) *Cache {
	return &Cache{client: func() *redis.Client { return c }, prefix: prefix}
}

// GetJSON decodes the value at key into dst. ok is false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (ok bool, err error) {
	rdb := c.client()
	if rdb == nil {
		return false, ErrNoClient
	}
	raw, err := rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	rdb := c.client()
	if rdb == nil {
		return ErrNoClient
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	return rdb.Set(ctx, c.prefix+key, raw, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	rdb := c.client()
	if rdb == nil {
		return ErrNoClient
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return rdb.Del(ctx, full...).Err()
}
