package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OptimizationKeyPrefix = "itinerary_optimization:"
	PriceKeyPrefix        = "hotel_prices:"
)

// ErrNoClient is returned by a Cache that was built without a Redis client.
var ErrNoClient = errors.New("rdx: no redis client")

// OptimizationKey is the cache key of an optimization response.
func OptimizationKey(fingerprint string) string {
	return OptimizationKeyPrefix + fingerprint
}

// Cache is a byte/JSON cache over Redis. A missing key is a miss, not an error.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the value stored at key. found is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (val []byte, found bool, err error) {
	if c == nil || c.client == nil {
		return nil, false, ErrNoClient
	}
	val, err = c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores val at key for ttl. A zero ttl keeps the key forever.
func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrNoClient
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value at key into v.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}
