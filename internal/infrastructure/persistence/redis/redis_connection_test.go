package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/pkg/logger"
)

func TestRedisConnection_Lifecycle(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	conn := NewRedisConnection(&config.RedisConfig{Address: mr.Addr()}, logger.NewNoopLogger())
	assert.Nil(t, conn.GetClient())
	assert.Error(t, conn.Ping(context.Background()))

	require.NoError(t, conn.Connect(context.Background()))
	require.NotNil(t, conn.GetClient())
	assert.NoError(t, conn.Ping(context.Background()))

	// A second Connect is a no-op.
	assert.NoError(t, conn.Connect(context.Background()))

	assert.NoError(t, conn.Close())
	assert.Nil(t, conn.GetClient())
	assert.NoError(t, conn.Close())
}

func TestRedisConnection_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	conn := NewRedisConnection(&config.RedisConfig{Address: addr}, logger.NewNoopLogger())
	err = conn.Connect(context.Background())
	assert.Error(t, err)
	assert.Nil(t, conn.GetClient())
}
