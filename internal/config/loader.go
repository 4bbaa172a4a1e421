package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/turtacn/smsgw/pkg/constants"
)

// EnvPrefix namespaces environment overrides, e.g. SMSGW_MODEM_URL.
const EnvPrefix = "SMSGW"

// Loader reads configuration from defaults, an optional YAML file, environment variables
// and bound command line flags, in increasing order of precedence.
type Loader struct {
	v  *viper.Viper
	mu sync.Mutex
}

// NewLoader creates a loader. When configFile is empty the file "config.yaml" is searched
// in the working directory and /etc/smsgw/.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/smsgw/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", constants.DefaultHTTPPort)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_grace", constants.DefaultShutdownGrace)
	v.SetDefault("server.tls_cert", "")
	v.SetDefault("server.tls_key", "")
	v.SetDefault("server.http_redirect_port", 0)
	v.SetDefault("server.redirect_host", "")
	v.SetDefault("server.pprof_enabled", false)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("modem.url", constants.DefaultModemURL)
	v.SetDefault("modem.timeout", constants.DefaultDeviceTimeout)

	v.SetDefault("rate_limit.hourly", constants.DefaultHourlyLimit)
	v.SetDefault("rate_limit.daily", constants.DefaultDailyLimit)
	v.SetDefault("rate_limit.clients", []string{})

	v.SetDefault("alert.phone_number", "")

	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("idempotency.ttl", constants.DefaultIdempotencyTTL)
	v.SetDefault("idempotency.redis.address", "")
	v.SetDefault("idempotency.redis.password", "")
	v.SetDefault("idempotency.redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.log_sensitive", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampling_rate", 1.0)
}

// BindFlag makes a command line flag override the given configuration key when the flag
// was set explicitly.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the configuration file (if any), unmarshals and validates the result.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the file that was read, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch re-decodes the configuration whenever the file changes and hands the result to
// onChange. Invalid edits are reported through onError and otherwise ignored.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		l.mu.Lock()
		cfg, err := l.decode()
		l.mu.Unlock()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}
