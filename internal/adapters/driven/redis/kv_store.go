package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.KVStore = (*KVStore)(nil)

// keyPrefix namespaces every console key in Redis
const keyPrefix = "console:"

// KVStore implements driven.KVStore using Redis.
// With a TTL, every write refreshes the expiry of all session keys so an
// abandoned session disappears on its own.
type KVStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewKVStore creates a Redis-backed KVStore. A zero ttl keeps keys forever.
func NewKVStore(client *redis.Client, namespace string, ttl time.Duration) *KVStore {
	if namespace == "" {
		namespace = "default"
	}
	return &KVStore{client: client, namespace: namespace, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	// Use pipeline so the write and the expiry refresh land together
	pipe := s.client.TxPipeline()

	pipe.Set(ctx, s.key(key), value, s.ttl)
	if s.ttl > 0 {
		for _, k := range domain.SessionKeys {
			if k != key {
				pipe.Expire(ctx, s.key(k), s.ttl)
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}

	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

func (s *KVStore) key(k string) string {
	return keyPrefix + s.namespace + ":" + k
}
