package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wordsmith/internal/autocomplete"
)

// Options tunes the HTTP surface
type Options struct {
	// RecordDebounce batches POST /words recordings until no word has arrived
	// for this long. Zero records each word synchronously.
	RecordDebounce time.Duration
	// CORSOrigins lists allowed origins; "*" allows any
	CORSOrigins []string
}

// Server represents the HTTP API server
type Server struct {
	router   *http.ServeMux
	server   *http.Server
	addr     string
	logger   *slog.Logger
	engine   *autocomplete.Engine
	recorder *recorder
	metrics  *Metrics
	opts     Options
	started  time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(addr string, engine *autocomplete.Engine, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		addr:    addr,
		logger:  logger,
		engine:  engine,
		router:  http.NewServeMux(),
		metrics: NewMetrics(),
		opts:    opts,
		started: time.Now(),
	}
	if opts.RecordDebounce > 0 {
		s.recorder = newRecorder(engine, opts.RecordDebounce, s.metrics, logger)
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start serves until Shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr, "session", s.engine.SessionID())

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and records any queued words
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if s.recorder != nil {
		s.recorder.stop()
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware(s.opts.CORSOrigins)(handler)
	return handler
}
