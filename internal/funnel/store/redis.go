package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores records as plain string values with an optional TTL.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Load(ctx context.Context, key SlotKey) ([]byte, error) {
	val, err := r.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisSlot) Save(ctx context.Context, key SlotKey, data []byte) error {
	return r.client.Set(ctx, key.String(), data, r.ttl).Err()
}

func (r *RedisSlot) Clear(ctx context.Context, key SlotKey) error {
	return r.client.Del(ctx, key.String()).Err()
}
