package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *idempotencyStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewIdempotencyStore(client).(*idempotencyStore)
}

func TestIdempotencyStore_ReserveOnce(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("smsgw:idem:abc"))

	ok, err = store.Reserve(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = store.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_Release(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Reserve(ctx, "abc", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "abc"))

	ok, err := store.Reserve(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_ServerDown(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	_, err := store.Reserve(context.Background(), "abc", time.Hour)
	assert.Error(t, err)
}
