// Package rest exposes the engine over HTTP: team analysis, league
// rankings, cache inspection and health. Handlers stay thin; everything they
// return comes from the orchestrator, the league cache or the season
// calendar.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// SERVER
// ═══════════════════════════════════════════════════════════════════════════

// Config holds HTTP server settings.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server owns the HTTP listener and its routes.
type Server struct {
	config Config
	server *http.Server
	log    *logger.Logger
}

// NewServer builds a server around the given handler set.
func NewServer(config Config, h *Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("rest"))

	mux := http.NewServeMux()
	h.Register(mux)

	return &Server{
		config: config,
		log:    log,
		server: &http.Server{
			Addr:         config.Addr(),
			Handler:      withRequestContext(mux, log),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start() error {
	s.log.Info("http server listening", logger.String("addr", s.config.Addr()))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, waiting up to the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.log.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}
