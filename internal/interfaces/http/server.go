// Package http runs the gateway's HTTP listeners.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/pkg/logger"
)

// Server serves the gateway handler over HTTP or HTTPS and, with TLS and a redirect
// port configured, a plain HTTP listener that redirects to HTTPS.
type Server struct {
	cfg      *config.ServerConfig
	logger   logger.Logger
	main     *http.Server
	redirect *http.Server
}

// NewServer creates a Server for handler.
func NewServer(cfg *config.ServerConfig, handler http.Handler, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: log.WithComponent("http_server"),
		main: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    1 << 20,
		},
	}
	if cfg.TLSEnabled() && cfg.HTTPRedirectPort > 0 {
		s.redirect = &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.HTTPRedirectPort)),
			Handler:           RedirectHandler(cfg.RedirectHost, cfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s
}

// Run serves until ctx is cancelled or a listener fails, then shuts every listener down
// within the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if s.cfg.TLSEnabled() {
			s.logger.Info(ctx, "Starting HTTPS server", logger.String("address", s.main.Addr))
			err = s.main.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			s.logger.Info(ctx, "Starting HTTP server", logger.String("address", s.main.Addr))
			err = s.main.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gateway listener: %w", err)
		}
		return nil
	})

	if s.redirect != nil {
		g.Go(func() error {
			s.logger.Info(ctx, "Starting HTTP to HTTPS redirect server", logger.String("address", s.redirect.Addr))
			if err := s.redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("redirect listener: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()

	s.logger.Info(ctx, "Shutting down HTTP server", logger.Duration("grace", s.cfg.ShutdownGrace))

	var errs []error
	if err := s.main.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "Server forced to shutdown", err)
		_ = s.main.Close()
		errs = append(errs, err)
	}
	if s.redirect != nil {
		if err := s.redirect.Shutdown(ctx); err != nil {
			_ = s.redirect.Close()
			errs = append(errs, err)
		}
	}

	s.logger.Info(context.Background(), "HTTP server stopped")
	return errors.Join(errs...)
}

// RedirectHandler answers every request with a 301 to the same path on the HTTPS port.
// host overrides the request's host name when set.
func RedirectHandler(host string, httpsPort int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := host
		if target == "" {
			target = r.Host
			if h, _, err := net.SplitHostPort(r.Host); err == nil {
				target = h
			}
		}
		if httpsPort != 443 {
			target = net.JoinHostPort(target, strconv.Itoa(httpsPort))
		}
		http.Redirect(w, r, "https://"+target+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}
