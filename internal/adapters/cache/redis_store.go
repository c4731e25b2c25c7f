package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	redisclient "github.com/medassist/offline-triage/internal/infrastructure/clients/redis"
)

// RedisStore implements CacheStore with one Redis hash per namespace plus a
// set indexing the namespace names, so several edge instances share one cache.
type RedisStore struct {
	client *redisclient.Client
	prefix string
}

// NewRedisStore creates a Redis-backed cache store. keyPrefix scopes every
// Redis key it touches.
func NewRedisStore(client *redisclient.Client, keyPrefix string) providers.CacheStore {
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
	}
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":namespaces"
}

func (s *RedisStore) namespaceKey(namespace string) string {
	return s.prefix + ":ns:" + namespace
}

// Namespaces lists existing namespaces in lexical order
func (s *RedisStore) Namespaces(ctx context.Context) ([]string, error) {
	names, err := s.client.Client().SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cache namespaces: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Put stores resp and registers its namespace in one transaction
func (s *RedisStore) Put(ctx context.Context, namespace, key string, resp *entities.CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	_, err = s.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.namespaceKey(namespace), key, data)
		pipe.SAdd(ctx, s.indexKey(), namespace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Match returns the stored entry, or nil on a miss
func (s *RedisStore) Match(ctx context.Context, namespace, key string) (*entities.CachedResponse, error) {
	data, err := s.client.Client().HGet(ctx, s.namespaceKey(namespace), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry entities.CachedResponse
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// Keys lists the keys of a namespace in lexical order
func (s *RedisStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	keys, err := s.client.Client().HKeys(ctx, s.namespaceKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteNamespace removes the hash and its index entry. Concurrent deletes of
// the same namespace are safe; only one of them reports true.
func (s *RedisStore) DeleteNamespace(ctx context.Context, namespace string) (bool, error) {
	var removed *redis.IntCmd
	_, err := s.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.namespaceKey(namespace))
		removed = pipe.SRem(ctx, s.indexKey(), namespace)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete cache namespace %s: %w", namespace, err)
	}
	return removed.Val() > 0, nil
}
