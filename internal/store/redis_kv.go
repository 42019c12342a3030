package store

import (
	"context"
	"errors"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisKV keeps records as plain redis strings without expiry.
type RedisKV struct {
	client    *redisv9.Client
	namespace string
}

func NewRedisKV(client *redisv9.Client, namespace string) *RedisKV {
	if namespace == "" {
		namespace = "gemcanvas"
	}
	return &RedisKV{client: client, namespace: namespace}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get record failed: %w", err)
	}
	return raw, true, nil
}

func (r *RedisKV) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set record failed: %w", err)
	}
	return nil
}

func (r *RedisKV) redisKey(key string) string {
	return fmt.Sprintf("%s:record:%s", r.namespace, key)
}
