// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the handler resolver and loader
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/deppfellow/villarch/internal/config"
	"github.com/deppfellow/villarch/internal/loader"
	loggerPkg "github.com/deppfellow/villarch/internal/logger"
	"github.com/deppfellow/villarch/internal/resolver"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. It holds:
//   - the config
//   - the logger(s)
//   - the resolver over the handler directory and the handler loader
//   - an internal *http.Server used to listen and serve requests
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, this may exist but contain nil nrApp.
	LoggerService *loggerPkg.LoggerService

	// Resolver maps request paths to handler units under Config.Handlers.Dir.
	Resolver *resolver.Resolver

	// Loader loads resolved handler units.
	Loader loader.Loader

	// httpServer is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server directly. That is done in SetupHTTPServer + Start.
//
// The handler directory must exist: a server with nothing to dispatch to fails
// at startup rather than answering 404 to everything.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	return NewWithFs(cfg, logger, loggerService, afero.NewOsFs())
}

// NewWithFs is New over an explicit filesystem.
func NewWithFs(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, fs afero.Fs) (*Server, error) {
	r, err := resolver.New(fs, cfg.Handlers.Dir, cfg.Handlers.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}

	if err := r.Check(); err != nil {
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}

	var l loader.Loader = loader.NewPlugin(cfg.Handlers.Symbol)
	if !loader.PluginSupported() {
		logger.Warn().Msg("handler units cannot be loaded on this platform, every dispatch will fail")
	}

	if cfg.Handlers.Cache {
		l = loader.NewCache(l)
	}

	logger.Info().
		Str("dir", r.Base()).
		Str("extension", r.Extension()).
		Str("symbol", cfg.Handlers.Symbol).
		Bool("cache", cfg.Handlers.Cache).
		Msg("handler directory ready")

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Resolver:      r,
		Loader:        l,
	}, nil
}

// SetupHTTPServer configures the internal net/http server.
//
// The router/mux is passed in as handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// HTTPServer returns the configured *http.Server, or nil before SetupHTTPServer.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Start runs the HTTP server.
//
// It requires SetupHTTPServer to be called first. It blocks until the server
// stops; a graceful Shutdown makes it return nil.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It stops the HTTP server (finishing in-flight requests until ctx deadline)
// and then flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown()
	return nil
}
