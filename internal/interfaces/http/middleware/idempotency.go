package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/logger"
)

const maxIdempotencyKeyLength = 128

// IdempotencyMiddleware rejects a request whose Idempotency-Key header was already seen
// within the configured TTL with 409 Conflict. Requests without the header pass through.
//
// The key is reserved before the handler runs so concurrent duplicates cannot both reach
// the quota ledger. It is released again when the handler answers with a 4xx, since
// nothing was delivered and the client may retry. Successes and server errors keep the
// key because the device may already have sent the message.
func IdempotencyMiddleware(store service.IdempotencyStore, cfg *config.IdempotencyConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || store == nil {
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(constants.HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				errors.ToErrorResponse(errors.ErrInvalidRequest("Idempotency-Key is too long")))
			return
		}

		scoped := c.FullPath() + ":" + key
		isNew, err := store.Reserve(c.Request.Context(), scoped, cfg.TTL)
		if err != nil {
			log.Error(c.Request.Context(), "Idempotency check failed", err, logger.String("idempotency_key", key))
			c.Next() // Fail open: a store outage must not block sends.
			return
		}
		if !isNew {
			log.Warn(c.Request.Context(), "Duplicate request rejected", logger.String("idempotency_key", key))
			c.AbortWithStatusJSON(http.StatusConflict, errors.ToErrorResponse(errors.ErrDuplicateRequest(key)))
			return
		}

		c.Next()

		if status := c.Writer.Status(); status >= 400 && status < 500 {
			if err := store.Release(c.Request.Context(), scoped); err != nil {
				log.Warn(c.Request.Context(), "Failed to release idempotency key",
					logger.String("idempotency_key", key), logger.Error(err))
			}
		}
	}
}
