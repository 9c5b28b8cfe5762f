// Package server exposes the catalog over HTTP as a read-only JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/metrics"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Source supplies the registry to answer from. It is consulted once per
// request, so a reload never changes the catalog mid-response.
type Source interface {
	Registry() *catalog.Registry
}

// Server is the HTTP front-end.
type Server struct {
	src     Source
	metrics *metrics.Metrics
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New builds a Server. A nil logger uses slog.Default.
func New(src Source, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		src:     src,
		metrics: m,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /health", s.handleHealth)
	s.handle("GET /v1/modules", s.handleModules)
	s.handle("GET /v1/modules/{module}", s.handleModule)
	s.handle("GET /v1/modules/{module}/capabilities/{name}", s.handleCapability)
	s.handle("GET /v1/lookup", s.handleLookup)
	s.handle("GET /v1/export", s.handleExport)
	s.mux.Handle("GET /metrics", s.instrument("GET /metrics", s.metrics.Handler()))
	s.handle("/", s.handleUnknown)
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.instrument(pattern, h))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting.", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed.", "error", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
