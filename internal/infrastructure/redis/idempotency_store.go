package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/smsgw/internal/domain/service"
)

const keyPrefix = "smsgw:idem:"

type idempotencyStore struct{ rdb redis.UniversalClient }

// NewIdempotencyStore returns a store shared by every gateway instance using rdb.
func NewIdempotencyStore(rdb redis.UniversalClient) service.IdempotencyStore {
	return &idempotencyStore{rdb: rdb}
}

func key(k string) string { return keyPrefix + k }

// Reserve uses SETNX so two concurrent requests with the same key cannot both win.
func (s *idempotencyStore) Reserve(ctx context.Context, k string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key(k), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve failed: %w", err)
	}
	return ok, nil
}

func (s *idempotencyStore) Release(ctx context.Context, k string) error {
	if err := s.rdb.Del(ctx, key(k)).Err(); err != nil {
		return fmt.Errorf("idempotency release failed: %w", err)
	}
	return nil
}
