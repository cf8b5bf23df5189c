package server

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"kika/internal/handlers"
	applog "kika/internal/log"
	"kika/internal/presets"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr              string
	Database          *gorm.DB
	Presets           *presets.Library
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server wraps an http.Server and exposes helpers for bootstrapping the
// material API.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"database", cfg.Database != nil,
	)

	if cfg.ReadHeaderTimeout <= 0 {
		applog.Debug(context.Background(), "read header timeout not provided, using default")
		cfg.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		applog.Debug(context.Background(), "shutdown timeout not provided, using default")
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Presets == nil {
		lib, err := presets.Builtin()
		if err != nil {
			return nil, err
		}
		applog.Debug(context.Background(), "preset library not provided, using builtin presets")
		cfg.Presets = lib
	}

	handlers.Configure(cfg.Database, cfg.Presets)

	applog.Debug(context.Background(), "handler dependencies configured")

	m := newMetrics()
	handler := withRequestID(m.instrument(newRouter(m)))

	applog.Debug(context.Background(), "http handler chain prepared")

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	applog.Debug(context.Background(), "server handler requested")
	return s.httpServer.Handler
}
