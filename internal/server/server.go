package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/avello/routeway/internal/config"
	"github.com/avello/routeway/internal/observability"
	"github.com/avello/routeway/internal/router"
)

// Server runs the main HTTP listener and, when metrics are enabled, a
// dedicated metrics/health listener.
type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	health  *HealthHandler
	logger  observability.Logger

	httpServer    *http.Server
	metricsServer *http.Server

	mu      sync.Mutex
	running bool
}

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsListener serves the metrics handler and the health probe on
// a dedicated listener.
func WithMetricsListener(cfg config.MetricsConfig, metrics *observability.Metrics) Option {
	return func(s *Server) {
		mux := http.NewServeMux()
		mux.Handle(cfg.Path, metrics.Handler())
		mux.Handle("/health", s.health)

		s.metricsServer = &http.Server{
			Addr:         cfg.Address,
			Handler:      mux,
			ReadTimeout:  s.cfg.ReadTimeout.Duration(),
			WriteTimeout: s.cfg.WriteTimeout.Duration(),
		}
	}
}

// New creates a server for the given router.
func New(cfg config.ServerConfig, r *router.Router, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		health: NewHealthHandler(),
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.handler = NewHandler(r, s.logger)

	return s
}

// Handler returns the transport handler serving dispatched routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health returns the health probe handler.
func (s *Server) Health() *HealthHandler {
	return s.health
}

// Start starts the listeners and blocks until the main listener stops.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	s.httpServer = &http.Server{
		Addr:           s.cfg.Address,
		Handler:        s.handler,
		ReadTimeout:    s.cfg.ReadTimeout.Duration(),
		WriteTimeout:   s.cfg.WriteTimeout.Duration(),
		IdleTimeout:    s.cfg.IdleTimeout.Duration(),
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}

	s.running = true
	s.mu.Unlock()

	if s.metricsServer != nil {
		go func() {
			s.logger.Info("starting metrics server",
				observability.String("address", s.metricsServer.Addr),
			)
			if err := s.metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server error", observability.Error(err))
			}
		}()
	}

	s.logger.Info("starting HTTP server",
		observability.String("address", s.cfg.Address),
		observability.Duration("readTimeout", s.cfg.ReadTimeout.Duration()),
		observability.Duration("writeTimeout", s.cfg.WriteTimeout.Duration()),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop shuts the listeners down gracefully, waiting for in-flight
// requests up to the context deadline. Readiness probes start failing as
// soon as shutdown begins.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.health.SetDraining()
	s.logger.Info("stopping HTTP server")

	var firstErr error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("failed to shutdown server: %w", err)
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to shutdown metrics server: %w", err)
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if firstErr == nil {
		s.logger.Info("HTTP server stopped")
	}
	return firstErr
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
