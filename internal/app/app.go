// Package app wires the gateway's components together and runs them.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appservice "github.com/turtacn/smsgw/internal/application/service"
	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/internal/infrastructure/cache"
	"github.com/turtacn/smsgw/internal/infrastructure/modem"
	"github.com/turtacn/smsgw/internal/infrastructure/monitoring"
	redisconn "github.com/turtacn/smsgw/internal/infrastructure/persistence/redis"
	"github.com/turtacn/smsgw/internal/infrastructure/ratelimit"
	redisstore "github.com/turtacn/smsgw/internal/infrastructure/redis"
	httpserver "github.com/turtacn/smsgw/internal/interfaces/http"
	"github.com/turtacn/smsgw/internal/interfaces/http/handlers"
	"github.com/turtacn/smsgw/internal/interfaces/http/router"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/logger"
)

const (
	readinessTimeout = 5 * time.Second
	cacheCleanup     = 10 * time.Minute
)

// App is a fully wired gateway.
type App struct {
	cfg       *config.Config
	log       logger.Logger
	startedAt time.Time

	tracing  *monitoring.TracingManager
	registry *prometheus.Registry
	metrics  *monitoring.Metrics
	ledger   *ratelimit.QuotaLedger
	device   *modem.Client
	redis    *redisconn.RedisConnection
	engine   *gin.Engine
}

// New builds every component from cfg. Redis is dialed here when configured, so a
// misconfigured store fails startup rather than the first request.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, startedAt: time.Now()}

	limits, err := cfg.RateLimit.CallerLimits()
	if err != nil {
		return nil, err
	}

	a.tracing, err = monitoring.NewTracingManager(&cfg.Tracing, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = monitoring.NewMetrics(a.registry)
	a.metrics.Init(cfg.RateLimit.Hourly, cfg.RateLimit.Daily, limits, a.startedAt)
	adapter := monitoring.NewMetricsAdapter(a.metrics)

	a.ledger = ratelimit.NewQuotaLedger(cfg.RateLimit.Hourly, cfg.RateLimit.Daily, limits,
		ratelimit.WithObserver(adapter))

	a.device = modem.NewClient(cfg.Modem.URL,
		modem.WithTimeout(cfg.Modem.Timeout),
		modem.WithLogger(log),
		modem.WithMetrics(adapter),
		modem.WithTracer(a.tracing.Tracer()),
		modem.WithSensitiveLogging(cfg.Log.LogSensitive),
	)

	checks := map[string]handlers.HealthCheck{
		"modem": func(ctx context.Context) error {
			_, err := a.device.AcquireSession(ctx)
			return err
		},
	}

	store, err := a.idempotencyStore(ctx)
	if err != nil {
		_ = a.tracing.Shutdown(ctx)
		return nil, err
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping
	}

	smsService := appservice.NewSmsAppService(a.device, a.ledger, adapter, appservice.SmsAppServiceConfig{
		AlertRecipient: cfg.Alert.PhoneNumber,
		LogSensitive:   cfg.Log.LogSensitive,
	}, log)
	statusService := appservice.NewStatusAppService(a.ledger, appservice.StatusInfo{
		ModemURL:       a.device.BaseURL(),
		TLSEnabled:     cfg.Server.TLSEnabled(),
		AlertRecipient: cfg.Alert.PhoneNumber,
		StartedAt:      a.startedAt,
	})

	gin.SetMode(gin.ReleaseMode)
	a.engine = router.New(router.Dependencies{
		Config:           cfg,
		Logger:           log,
		Tracer:           a.tracing.Tracer(),
		Metrics:          adapter,
		MetricsHandler:   promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}),
		IdempotencyStore: store,
		SmsHandler:       handlers.NewSmsHandler(smsService, log),
		StatusHandler:    handlers.NewStatusHandler(statusService, log),
		HealthHandler:    handlers.NewHealthHandler(checks, readinessTimeout, log),
	})

	log.Info(ctx, "Gateway initialized",
		logger.String("version", constants.VersionFull()),
		logger.String("modem_url", a.device.BaseURL()),
		logger.Int("hourly_limit", cfg.RateLimit.Hourly),
		logger.Int("daily_limit", cfg.RateLimit.Daily),
		logger.Int("client_limits", len(limits)),
		logger.Bool("alerts_enabled", cfg.Alert.PhoneNumber != ""),
	)
	return a, nil
}

// idempotencyStore picks redis when an address is configured, else an in-process cache.
func (a *App) idempotencyStore(ctx context.Context) (service.IdempotencyStore, error) {
	idem := &a.cfg.Idempotency
	if !idem.Enabled {
		return nil, nil
	}
	if idem.Redis.Address == "" {
		a.log.Info(ctx, "Using in-process idempotency store")
		return cache.NewIdempotencyStore(idem.TTL, cacheCleanup), nil
	}

	a.redis = redisconn.NewRedisConnection(&idem.Redis, a.log)
	if err := a.redis.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redisstore.NewIdempotencyStore(a.redis.GetClient()), nil
}

// Handler returns the gateway's HTTP handler.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Ledger returns the quota ledger shared by every request.
func (a *App) Ledger() *ratelimit.QuotaLedger {
	return a.ledger
}

// Run serves until ctx is cancelled, then releases every resource.
func (a *App) Run(ctx context.Context) error {
	server := httpserver.NewServer(&a.cfg.Server, a.engine, a.log)
	runErr := server.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownGrace+time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Close flushes spans and closes the redis connection.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.tracing.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WatchLogLevel applies log.level edits in the configuration file without a restart.
// Everything else in the file is fixed at startup.
func WatchLogLevel(loader *config.Loader, log logger.Logger) {
	loader.Watch(func(cfg *config.Config) {
		level := constants.LogLevel(cfg.Log.Level)
		if level == log.GetLevel() {
			return
		}
		log.SetLevel(level)
		log.Info(context.Background(), "Log level changed", logger.String("level", cfg.Log.Level))
	}, func(err error) {
		log.Warn(context.Background(), "Ignoring invalid configuration change", logger.String("error", err.Error()))
	})
}

// Serve builds the gateway from cfg and runs it until ctx is cancelled. When loader is
// not nil the log level follows edits to the configuration file.
func Serve(ctx context.Context, cfg *config.Config, loader *config.Loader, log logger.Logger) error {
	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if loader != nil {
		WatchLogLevel(loader, log)
	}
	return a.Run(ctx)
}
