package db

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for keys that hold no value.
var ErrKeyNotFound = errors.New("key not found")

// RedisClient defines the key-value operations the store layer needs.
type RedisClient interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
