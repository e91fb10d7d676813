package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// GoRedisClient implements RedisClient on top of go-redis.
type GoRedisClient struct {
	client *redis.Client
}

// NewGoRedisClient wraps an already configured go-redis client.
func NewGoRedisClient(client *redis.Client) *GoRedisClient {
	return &GoRedisClient{client: client}
}

// NewGoRedisClientFromOptions dials addr lazily; use Ping to check connectivity.
func NewGoRedisClientFromOptions(addr, password string, db int) *GoRedisClient {
	return NewGoRedisClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// Set sets a key-value pair in Redis
func (r *GoRedisClient) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Get retrieves the value for a given key from Redis
func (r *GoRedisClient) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, err
}

func (r *GoRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern).Result()
}

func (r *GoRedisClient) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *GoRedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *GoRedisClient) Close() error {
	return r.client.Close()
}
