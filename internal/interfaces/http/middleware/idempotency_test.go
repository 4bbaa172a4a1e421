package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/internal/infrastructure/cache"
	redisstore "github.com/turtacn/smsgw/internal/infrastructure/redis"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/logger"
)

func newIdempotentRouter(store service.IdempotencyStore, status *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.IdempotencyConfig{Enabled: true, TTL: time.Hour}

	router := gin.New()
	router.Use(IdempotencyMiddleware(store, cfg, logger.NewNoopLogger()))
	router.POST("/send-sms", func(c *gin.Context) {
		c.Status(*status)
	})
	return router
}

func post(router *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/send-sms", nil)
	if key != "" {
		req.Header.Set(constants.HeaderIdempotencyKey, key)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	status := http.StatusOK
	router := newIdempotentRouter(redisstore.NewIdempotencyStore(client), &status)

	t.Run("should allow request with new key", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post(router, "new-key").Code)
	})

	t.Run("should deny request with used key", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post(router, "used-key").Code)
		w := post(router, "used-key")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), string(constants.ErrCodeDuplicateRequest))
	})

	t.Run("should pass requests without key", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post(router, "").Code)
		assert.Equal(t, http.StatusOK, post(router, "").Code)
	})

	t.Run("should fail open when redis is down", func(t *testing.T) {
		mr.Close()
		assert.Equal(t, http.StatusOK, post(router, "any-key").Code)
	})
}

func TestIdempotencyMiddleware_ReleasesOnClientError(t *testing.T) {
	status := http.StatusTooManyRequests
	router := newIdempotentRouter(cache.NewIdempotencyStore(time.Hour, time.Minute), &status)

	assert.Equal(t, http.StatusTooManyRequests, post(router, "k").Code)

	status = http.StatusOK
	assert.Equal(t, http.StatusOK, post(router, "k").Code)
	assert.Equal(t, http.StatusConflict, post(router, "k").Code)
}

func TestIdempotencyMiddleware_KeepsKeyOnServerError(t *testing.T) {
	status := http.StatusInternalServerError
	router := newIdempotentRouter(cache.NewIdempotencyStore(time.Hour, time.Minute), &status)

	assert.Equal(t, http.StatusInternalServerError, post(router, "k").Code)
	assert.Equal(t, http.StatusConflict, post(router, "k").Code)
}

func TestIdempotencyMiddleware_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(IdempotencyMiddleware(failingStore{}, &config.IdempotencyConfig{Enabled: false}, logger.NewNoopLogger()))
	router.POST("/send-sms", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, post(router, "k").Code)
	assert.Equal(t, http.StatusOK, post(router, "k").Code)
}

func TestIdempotencyMiddleware_KeyTooLong(t *testing.T) {
	status := http.StatusOK
	router := newIdempotentRouter(cache.NewIdempotencyStore(time.Hour, time.Minute), &status)

	long := make([]byte, maxIdempotencyKeyLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, http.StatusBadRequest, post(router, string(long)).Code)
}

type failingStore struct{}

func (failingStore) Reserve(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("unavailable")
}

func (failingStore) Release(context.Context, string) error { return nil }
