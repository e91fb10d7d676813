package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"occupancy-forecaster/db"
)

// STORE_KEY_FORMAT maps a store path below a root onto a Redis key.
const STORE_KEY_FORMAT = "%s:%s"

// RedisStore implements dao.Store with one Redis key per path. Reading a path
// that has no value of its own assembles its descendants into an object, the
// way a hierarchical store returns a subtree.
type RedisStore struct {
	client db.RedisClient
	root   string
}

// NewRedisStore initializes a RedisStore with the Redis client.
func NewRedisStore(client db.RedisClient, root string) *RedisStore {
	return &RedisStore{client: client, root: root}
}

func (s *RedisStore) key(path string) string {
	return fmt.Sprintf(STORE_KEY_FORMAT, s.root, strings.Trim(path, "/"))
}

// Authenticate checks the connection.
func (s *RedisStore) Authenticate(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return fmt.Errorf("[RedisStore] failed to reach redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, path string) (json.RawMessage, bool, error) {
	key := s.key(path)
	value, err := s.client.Get(ctx, key)
	if err == nil {
		return json.RawMessage(value), true, nil
	}
	if !errors.Is(err, db.ErrKeyNotFound) {
		return nil, false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	doc, ok, err := s.subtree(ctx, key)
	if err != nil || ok {
		return doc, ok, err
	}
	return s.fromAncestor(ctx, path)
}

// fromAncestor reads path out of the nearest ancestor stored as one document.
func (s *RedisStore) fromAncestor(ctx context.Context, path string) (json.RawMessage, bool, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for depth := len(segments) - 1; depth > 0; depth-- {
		key := s.key(strings.Join(segments[:depth], "/"))
		value, err := s.client.Get(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to get %s from redis: %w", key, err)
		}

		doc := json.RawMessage(value)
		for _, segment := range segments[depth:] {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(doc, &fields); err != nil {
				return nil, false, nil
			}
			child, found := fields[segment]
			if !found {
				return nil, false, nil
			}
			doc = child
		}
		if string(doc) == "null" {
			return nil, false, nil
		}
		return doc, true, nil
	}
	return nil, false, nil
}

func (s *RedisStore) subtree(ctx context.Context, key string) (json.RawMessage, bool, error) {
	keys, err := s.client.Keys(ctx, key+"/*")
	if err != nil {
		return nil, false, fmt.Errorf("failed to list children of %s: %w", key, err)
	}
	if len(keys) == 0 {
		return nil, false, nil
	}

	tree := map[string]interface{}{}
	for _, child := range keys {
		value, err := s.client.Get(ctx, child)
		if errors.Is(err, db.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to get %s from redis: %w", child, err)
		}
		insert(tree, strings.Split(strings.TrimPrefix(child, key+"/"), "/"), json.RawMessage(value))
	}
	if len(tree) == 0 {
		return nil, false, nil
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal subtree %s: %w", key, err)
	}
	return data, true, nil
}

func insert(tree map[string]interface{}, segments []string, value json.RawMessage) {
	node := tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := node[segment].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			node[segment] = next
		}
		node = next
	}
	node[segments[len(segments)-1]] = value
}

// Set replaces the document at path and drops anything stored below it.
func (s *RedisStore) Set(ctx context.Context, path string, doc json.RawMessage) error {
	key := s.key(path)
	children, err := s.client.Keys(ctx, key+"/*")
	if err != nil {
		return fmt.Errorf("failed to list children of %s: %w", key, err)
	}
	if err := s.client.Del(ctx, children...); err != nil {
		return fmt.Errorf("failed to clear children of %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, string(doc)); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

// Update merges the top-level fields of patch into the object at path.
func (s *RedisStore) Update(ctx context.Context, path string, patch json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return fmt.Errorf("update patch for %s must be an object: %w", path, err)
	}

	key := s.key(path)
	merged := map[string]json.RawMessage{}
	current, err := s.client.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(current), &merged); err != nil {
			return fmt.Errorf("existing value at %s is not an object: %w", key, err)
		}
	case !errors.Is(err, db.ErrKeyNotFound):
		return fmt.Errorf("failed to get %s from redis: %w", key, err)
	}

	for field, value := range fields {
		merged[field] = value
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal update for %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}
