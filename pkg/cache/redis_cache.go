package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/quintero-labs/shopcore-backend/pkg/redis"
)

// RedisCache implements the same memoizing contract as RequestCache against
// a shared Redis keyspace, for deployments that want the organized cart to
// survive a single request. Values round-trip through JSON; NewValue must
// return a pointer to the concrete type being cached.
type RedisCache struct {
	client   *redis.Client
	ttl      time.Duration
	newValue func() any
}

// NewRedisCache wires a Redis-backed cache with the given entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, newValue func() any) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if newValue == nil {
		return nil, errors.New("value factory is required")
	}
	return &RedisCache{client: client, ttl: ttl, newValue: newValue}, nil
}

// Get returns the cached value for key, computing and storing it via populate
// on a miss. Cache write failures are swallowed: the computed value is still
// returned and the next read repopulates.
func (c *RedisCache) Get(ctx context.Context, key string, populate func(context.Context) (any, error)) (any, error) {
	raw, err := c.client.Get(ctx, key)
	if err == nil {
		value := c.newValue()
		if unmarshalErr := json.Unmarshal([]byte(raw), value); unmarshalErr == nil {
			return value, nil
		}
		// Corrupt entry: fall through and repopulate.
		_ = c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	value, err := populate(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, marshalErr := json.Marshal(value); marshalErr == nil {
		_ = c.client.Set(ctx, key, encoded, c.ttl)
	}
	return value, nil
}

// InvalidateByPrefix removes every key below the prefix.
func (c *RedisCache) InvalidateByPrefix(ctx context.Context, prefix string) error {
	return c.client.DeleteByPattern(ctx, prefix+"*")
}
