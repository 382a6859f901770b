// Package redis provides the Redis-backed session store.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// DefaultPrefix namespaces session keys. The hash tag keeps every key in one
// cluster slot so MULTI/EXEC works on Redis Cluster.
const DefaultPrefix = "socialauth:{session}:"

// SessionStore keeps session keys as plain Redis strings without TTL.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a store using DefaultPrefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, DefaultPrefix)
}

// NewSessionStoreWithPrefix creates a store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// MultiSet writes all pairs inside one MULTI/EXEC block.
func (s *SessionStore) MultiSet(ctx context.Context, pairs []ports.KeyValue) error {
	if len(pairs) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, kv := range pairs {
			p.Set(ctx, s.prefix+kv.Key, kv.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multiset: %w", err)
	}
	return nil
}

// MultiRemove deletes all keys inside one MULTI/EXEC block.
func (s *SessionStore) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, full...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multiremove: %w", err)
	}
	return nil
}
