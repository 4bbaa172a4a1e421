package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_ReserveOnce(t *testing.T) {
	store := NewIdempotencyStore(time.Hour, time.Minute)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Reserve(ctx, "k2", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestIdempotencyStore_ExpiredKeyCanBeReused(t *testing.T) {
	store := NewIdempotencyStore(time.Hour, time.Minute)
	ctx := context.Background()

	ok, _ := store.Reserve(ctx, "k1", 10*time.Millisecond)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	ok, _ = store.Reserve(ctx, "k1", time.Hour)
	assert.True(t, ok)
}

func TestIdempotencyStore_Release(t *testing.T) {
	store := NewIdempotencyStore(time.Hour, time.Minute)
	ctx := context.Background()

	_, _ = store.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, store.Release(ctx, "k1"))

	ok, _ := store.Reserve(ctx, "k1", time.Hour)
	assert.True(t, ok)
}

func TestIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewIdempotencyStore(time.Hour, time.Minute)
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Reserve(context.Background(), "same", time.Hour); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}
