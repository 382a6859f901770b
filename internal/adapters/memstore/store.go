// Package memstore is a process-local session store.
package memstore

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// Store keeps session keys in memory without expiration.
// Multi-key operations are atomic with respect to each other.
type Store struct {
	mu sync.RWMutex
	c  *gocache.Cache
}

var _ ports.SessionStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.c.Get(key)
	if !ok {
		return "", false, nil
	}
	str, _ := v.(string)
	return str, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.MultiSet(ctx, []ports.KeyValue{{Key: key, Value: value}})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.MultiRemove(ctx, []string{key})
}

func (s *Store) MultiSet(ctx context.Context, pairs []ports.KeyValue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kv := range pairs {
		s.c.Set(kv.Key, kv.Value, gocache.NoExpiration)
	}
	return nil
}

func (s *Store) MultiRemove(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.c.Delete(k)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.c.ItemCount()
}
