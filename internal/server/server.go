// Package server implements the HTTP Request Pipeline (C9): the router,
// its middleware stack, and the handlers backing §6.1's surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps an HTTP server with graceful shutdown, mirroring the
// teacher's internal/server/server.go shape.
type Server struct {
	ctx    context.Context
	server *http.Server
	logger *slog.Logger
}

// NewServer returns a Server listening on addr and serving handler.
func NewServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		ctx: ctx,
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // streaming /question/stream responses run minutes (§5)
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Stop is called or the server fails.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down, giving in-flight requests 30s to
// finish.
func (s *Server) Stop() error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
