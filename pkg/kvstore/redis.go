package kvstore

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/sentrywaf/engine/pkg/types"
)

// RedisBackend stores each key as a Redis list of JSON-encoded values,
// newest first, mirroring the filesystem backend's "every write is a
// new entry" behavior without needing a directory listing.
type RedisBackend struct {
	addr   string
	client *redis.Client
}

// NewRedisBackend returns a backend that will dial addr on Connect.
func NewRedisBackend(addr string) *RedisBackend {
	return &RedisBackend{addr: addr}
}

func (b *RedisBackend) Connect() error {
	b.client = redis.NewClient(&redis.Options{Addr: b.addr})
	return b.client.Ping(context.Background()).Err()
}

func (b *RedisBackend) Disconnect() error {
	return b.client.Close()
}

func (b *RedisBackend) Get(key string) ([]*Value, error) {
	raws, err := b.client.LRange(context.Background(), key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, types.NewError(types.Other, "kvstore: lrange %q: %v", key, err)
	}
	values := make([]*Value, 0, len(raws))
	for _, raw := range raws {
		var v Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, types.NewError(types.Other, "kvstore: decode %q: %v", key, err)
		}
		values = append(values, &v)
	}
	return values, nil
}

func (b *RedisBackend) Set(key string, v *Value) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return types.NewError(types.Other, "kvstore: encode %q: %v", key, err)
	}
	if err := b.client.LPush(context.Background(), key, raw).Err(); err != nil {
		return types.NewError(types.Other, "kvstore: lpush %q: %v", key, err)
	}
	if !v.Expiration.IsZero() {
		if err := b.client.ExpireAt(context.Background(), key, v.Expiration).Err(); err != nil {
			return types.NewError(types.Other, "kvstore: expireat %q: %v", key, err)
		}
	}
	return nil
}

func (b *RedisBackend) Remove(key string) error {
	if err := b.client.Del(context.Background(), key).Err(); err != nil {
		return types.NewError(types.Other, "kvstore: del %q: %v", key, err)
	}
	return nil
}
