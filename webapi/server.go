// Package webapi exposes the generation pipelines over HTTP: variant
// batches, iteration refinement, best-selection scoring, Nuke export,
// manufacturability analysis, generation history, and image retrieval,
// with optional shared-password authentication.
package webapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ServerConfig configures the API server.
type ServerConfig struct {
	// Host to bind to.
	Host string

	// Port to listen on.
	Port int

	// Password enables bcrypt-gated access to /api/ routes when non-empty.
	// The health endpoint is always open.
	Password string

	// ReadTimeout for HTTP requests.
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses.
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns a config with production timeouts. Generation
// batches can run for minutes, so the write timeout is generous.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            5000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server is the HTTP front for the generation pipeline.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	pipeline   *Pipeline
	auth       *PasswordAuth
	logger     *zap.Logger
}

// NewServer wires routes, logging middleware, and optional password auth
// around the pipeline.
func NewServer(config ServerConfig, pipeline *Pipeline, logger *zap.Logger) (*Server, error) {
	if pipeline == nil {
		return nil, ErrNilComponent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		pipeline: pipeline,
		logger:   logger.Named("webapi"),
	}

	if config.Password != "" {
		auth, err := NewPasswordAuth(config.Password)
		if err != nil {
			return nil, err
		}
		s.auth = auth
	}

	s.setupRoutes()

	loggingMw := NewLoggingMiddleware(logger, []string{"/api/health"})
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      loggingMw.Handler(s.mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	s.logger.Info("API server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", s.auth != nil))
	return s, nil
}

func (s *Server) setupRoutes() {
	p := s.pipeline

	// Health stays open for probes.
	s.mux.HandleFunc("GET /api/health", p.handleHealth)

	s.mux.Handle("POST /api/variants", s.protect(p.handleVariants))
	s.mux.Handle("POST /api/select-best", s.protect(p.handleSelectBest))
	s.mux.Handle("POST /api/iterations", s.protect(p.handleIterations))
	s.mux.Handle("POST /api/iterations/select-best", s.protect(p.handleIterationsSelectBest))
	s.mux.Handle("POST /api/export-nuke", s.protect(p.handleExportNuke))
	s.mux.Handle("POST /api/compare", s.protect(p.handleCompare))
	s.mux.Handle("POST /api/analyze-manufacturability", s.protect(p.handleAnalyzeManufacturability))
	s.mux.Handle("POST /api/brief", s.protect(p.handleBrief))
	s.mux.Handle("GET /api/history", s.protect(p.handleHistory))
	s.mux.Handle("GET /api/images/{filename}", s.protect(p.handleImage))
}

// protect wraps a handler with password auth when it is enabled.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if s.auth != nil {
		return s.auth.Middleware(h)
	}
	return h
}

// Handler returns the fully wired root handler.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Addr returns the server's listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start listens for HTTP requests and blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("API server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webapi: server error: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully, draining in-flight requests up to
// the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultServerConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webapi: shutdown: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}
