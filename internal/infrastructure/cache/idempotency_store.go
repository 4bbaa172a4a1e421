// Package cache holds process-local stores backed by go-cache.
package cache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/turtacn/smsgw/internal/domain/service"
)

// IdempotencyStore keeps idempotency keys in memory. It is used when no Redis is
// configured, so keys are only deduplicated within one process.
type IdempotencyStore struct {
	c *cache.Cache
}

var _ service.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a store whose expired keys are purged every cleanup.
func NewIdempotencyStore(defaultTTL, cleanup time.Duration) *IdempotencyStore {
	return &IdempotencyStore{c: cache.New(defaultTTL, cleanup)}
}

// Reserve relies on cache.Add failing when an unexpired item exists.
func (s *IdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.c.Add(key, time.Now(), ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Len reports the number of keys currently held, including expired ones not yet purged.
func (s *IdempotencyStore) Len() int {
	return s.c.ItemCount()
}
