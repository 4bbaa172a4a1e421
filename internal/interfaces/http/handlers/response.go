package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/logger"
)

// respondError writes err as a JSON error body with the status it maps to.
func respondError(c *gin.Context, log logger.Logger, err error) {
	status, body := errors.ToGenericErrorResponse(err)
	if errors.ShouldLogError(err) {
		log.Error(c.Request.Context(), "Request failed", err,
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
		)
	}
	c.AbortWithStatusJSON(status, body)
}
