package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/pkg/logger"
)

func TestRedirectHandler(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		port   int
		target string
		want   string
	}{
		{"request host without port", "", 8443, "http://example.com:8080/status?x=1", "https://example.com:8443/status?x=1"},
		{"override host", "sms.example.org", 8443, "http://10.0.0.1:8080/", "https://sms.example.org:8443/"},
		{"default https port", "", 443, "http://example.com/get-sms", "https://example.com/get-sms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RedirectHandler(tt.host, tt.port).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, http.StatusMovedPermanently, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_RunAndShutdown(t *testing.T) {
	port := freePort(t)
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: port, ShutdownGrace: 2 * time.Second}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := NewServer(cfg, handler, logger.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_NoRedirectWithoutTLS(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 8080, HTTPRedirectPort: 8081}
	srv := NewServer(cfg, http.NotFoundHandler(), logger.NewNoopLogger())
	assert.Nil(t, srv.redirect)
}
