package config

import (
	"fmt"
	"time"

	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/utils"
)

// Config holds the application's configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Modem       ModemConfig       `mapstructure:"modem"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Alert       AlertConfig       `mapstructure:"alert"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Log         LogConfig         `mapstructure:"log"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	ShutdownGrace    time.Duration `mapstructure:"shutdown_grace" validate:"min=0"`
	TLSCert          string        `mapstructure:"tls_cert"`
	TLSKey           string        `mapstructure:"tls_key"`
	HTTPRedirectPort int           `mapstructure:"http_redirect_port" validate:"min=0,max=65535"`
	RedirectHost     string        `mapstructure:"redirect_host"`
	PprofEnabled     bool          `mapstructure:"pprof_enabled"`
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
}

// TLSEnabled reports whether both halves of the key pair are configured.
func (s *ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

// Addr returns the host:port the gateway listens on.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ModemConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type RateLimitConfig struct {
	Hourly  int      `mapstructure:"hourly" validate:"min=0"`
	Daily   int      `mapstructure:"daily" validate:"min=0"`
	Clients []string `mapstructure:"clients"`
}

// CallerLimits parses the "name:hourly:daily" entries.
func (r *RateLimitConfig) CallerLimits() ([]models.CallerLimit, error) {
	limits := make([]models.CallerLimit, 0, len(r.Clients))
	for _, raw := range r.Clients {
		limit, err := models.ParseCallerLimit(raw)
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	return limits, nil
}

type AlertConfig struct {
	PhoneNumber string `mapstructure:"phone_number" validate:"omitempty,phone"`
}

type IdempotencyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type LogConfig struct {
	Level        string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format       string `mapstructure:"format" validate:"oneof=json console"`
	LogSensitive bool   `mapstructure:"log_sensitive"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Endpoint     string  `mapstructure:"endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"min=0,max=1"`
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("server.tls_cert and server.tls_key must be set together")
	}
	if c.Server.HTTPRedirectPort != 0 && !c.Server.TLSEnabled() {
		return fmt.Errorf("server.http_redirect_port requires TLS to be configured")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	if _, err := c.RateLimit.CallerLimits(); err != nil {
		return err
	}
	return nil
}
