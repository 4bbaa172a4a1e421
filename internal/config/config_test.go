package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader(writeConfig(t, "{}\n")).Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownGrace)
	assert.Equal(t, "http://192.168.8.1", cfg.Modem.URL)
	assert.Equal(t, 10*time.Second, cfg.Modem.Timeout)
	assert.Equal(t, 100, cfg.RateLimit.Hourly)
	assert.Equal(t, 1000, cfg.RateLimit.Daily)
	assert.Empty(t, cfg.Alert.PhoneNumber)
	assert.False(t, cfg.Server.TLSEnabled())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
modem:
  url: http://10.0.0.1
rate_limit:
  hourly: 5
  clients:
    - ci:2:10
    - ops:4:40
alert:
  phone_number: "+15551234567"
`)
	t.Setenv("SMSGW_RATE_LIMIT_DAILY", "50")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.1", cfg.Modem.URL)
	assert.Equal(t, 5, cfg.RateLimit.Hourly)
	assert.Equal(t, 50, cfg.RateLimit.Daily)
	assert.Equal(t, "+15551234567", cfg.Alert.PhoneNumber)

	limits, err := cfg.RateLimit.CallerLimits()
	require.NoError(t, err)
	require.Len(t, limits, 2)
	assert.Equal(t, "ci", limits[0].Name)
	assert.Equal(t, 2, limits[0].Hourly)
	assert.Equal(t, 40, limits[1].Daily)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad caller limit", "rate_limit:\n  clients: [\"ci:x:1\"]\n"},
		{"tls half configured", "server:\n  tls_cert: /tmp/cert.pem\n"},
		{"redirect without tls", "server:\n  http_redirect_port: 80\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad modem url", "modem:\n  url: \"not a url\"\n"},
		{"tracing without endpoint", "tracing:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeConfig(t, tt.body)).Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	assert.Error(t, err)
}
