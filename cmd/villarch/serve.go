package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/villarch/internal/config"
	"github.com/deppfellow/villarch/internal/handler"
	"github.com/deppfellow/villarch/internal/logger"
	"github.com/deppfellow/villarch/internal/router"
	"github.com/deppfellow/villarch/internal/server"
)

// DefaultContextTimeout bounds graceful shutdown.
const DefaultContextTimeout = 30

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	log := logger.NewLogger(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	handlers := handler.NewHandlers(srv)

	if routes, err := srv.Resolver.Scan(); err == nil {
		log.Info().Int("routes", len(routes)).Msg("discovered handler units")
	}

	if cfg.Handlers.Preload {
		start := time.Now()
		if err := handlers.Dispatch.Preload(ctx); err != nil {
			// Units that failed here fail again, per request, with a 500.
			log.Warn().Err(err).Msg("some handler units failed to preload")
		} else {
			log.Info().Dur("duration", time.Since(start)).Msg("handler units preloaded")
		}
	}

	r := router.NewRouter(srv, handlers)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
