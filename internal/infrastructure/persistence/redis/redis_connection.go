// Package redis manages the Redis client backing the shared idempotency store.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/pkg/logger"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5 * time.Second
	defaultIOTimeout    = 3 * time.Second
	defaultMaxRetries   = 3
)

// RedisConnection manages Redis client lifecycle and health monitoring.
type RedisConnection struct {
	config *config.RedisConfig
	logger logger.Logger

	mu     sync.RWMutex
	client redis.UniversalClient
}

// NewRedisConnection creates a connection manager. Nothing is dialed until Connect.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		config: cfg,
		logger: log.WithComponent("redis"),
	}
}

// Connect dials the configured server and verifies it with a ping.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.client != nil {
		rc.logger.Warn(ctx, "Redis connection already initialized")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         rc.config.Address,
		Password:     rc.config.Password,
		DB:           rc.config.DB,
		PoolSize:     defaultPoolSize,
		MinIdleConns: defaultMinIdleConns,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultIOTimeout,
		WriteTimeout: defaultIOTimeout,
		MaxRetries:   defaultMaxRetries,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err, logger.String("addr", rc.config.Address))
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	rc.client = client
	rc.logger.Info(ctx, "Redis connection established successfully",
		logger.String("addr", rc.config.Address),
		logger.Int("db", rc.config.DB),
	)
	return nil
}

// GetClient returns the client, or nil before Connect succeeds.
func (rc *RedisConnection) GetClient() redis.UniversalClient {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.client
}

// Ping checks server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	client := rc.GetClient()
	if client == nil {
		return fmt.Errorf("redis connection not initialized")
	}
	return client.Ping(ctx).Err()
}

// Close releases the pool.
func (rc *RedisConnection) Close() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.client == nil {
		return nil
	}
	err := rc.client.Close()
	rc.client = nil
	if err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	rc.logger.Info(context.Background(), "Redis connection closed")
	return nil
}
