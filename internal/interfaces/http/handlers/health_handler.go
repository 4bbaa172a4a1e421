package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smsgw/pkg/logger"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	log     logger.Logger
}

// NewHealthHandler creates a HealthHandler. Readiness runs every check in checks.
func NewHealthHandler(checks map[string]HealthCheck, timeout time.Duration, log logger.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{checks: checks, timeout: timeout, log: log}
}

// LivenessCheck reports that the process is serving.
// GET /health/live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck reports whether every dependency answered.
// GET /health/ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks := h.performChecks(c.Request.Context())

	status, httpStatus := "ready", http.StatusOK
	for name, result := range checks {
		if result != "ok" {
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
			h.log.Warn(c.Request.Context(), "Readiness check failed",
				logger.String("check", name),
				logger.String("result", result),
			)
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(parent context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		checks = make(map[string]string, len(h.checks))
	)
	wg.Add(len(h.checks))
	for name, check := range h.checks {
		go func(name string, check HealthCheck) {
			defer wg.Done()
			result := "ok"
			if err := check(ctx); err != nil {
				result = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return checks
}
