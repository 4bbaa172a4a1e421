// Package router assembles the gin engine serving the gateway API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/internal/interfaces/http/handlers"
	"github.com/turtacn/smsgw/internal/interfaces/http/middleware"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/logger"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Config           *config.Config
	Logger           logger.Logger
	Tracer           trace.Tracer
	Metrics          service.Metrics
	MetricsHandler   http.Handler
	IdempotencyStore service.IdempotencyStore
	SmsHandler       *handlers.SmsHandler
	StatusHandler    *handlers.StatusHandler
	HealthHandler    *handlers.HealthHandler
}

// New builds the engine with every gateway route registered.
func New(deps Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(handlers.RecoveryMiddleware(deps.Logger))
	engine.Use(handlers.RequestIDMiddleware())
	engine.Use(handlers.LoggingMiddleware(deps.Logger))
	engine.Use(middleware.ObservabilityMiddleware(deps.Tracer, deps.Metrics))
	engine.Use(cors.New(corsConfig(deps.Config.Server.AllowedOrigins)))

	engine.GET("/", deps.StatusHandler.Banner)
	engine.GET("/status", deps.StatusHandler.StatusPage)
	engine.GET("/statusz", deps.StatusHandler.StatusPage)
	engine.GET("/api/status", deps.StatusHandler.StatusJSON)

	engine.GET("/health/live", deps.HealthHandler.LivenessCheck)
	engine.GET("/health/ready", deps.HealthHandler.ReadinessCheck)

	if deps.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}
	if deps.Config.Server.PprofEnabled {
		pprof.Register(engine)
	}

	idempotent := middleware.IdempotencyMiddleware(deps.IdempotencyStore, &deps.Config.Idempotency, deps.Logger)
	engine.POST("/send-sms", idempotent, deps.SmsHandler.SendSMS)
	engine.POST("/alertmanager", idempotent, deps.SmsHandler.Alertmanager)
	engine.GET("/get-sms", deps.SmsHandler.GetSMS)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errors.ToErrorResponse(errors.ErrNotFound("The requested resource was not found")))
	})

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID, constants.HeaderIdempotencyKey},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
