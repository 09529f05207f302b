package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/arenaops/tournament-api/internal/api"
	"github.com/arenaops/tournament-api/internal/pkg/config"
	"github.com/arenaops/tournament-api/pkg/logger"
)

const (
	defaultConnectRetries  = 5
	defaultShutdownTimeout = 15 * time.Second
)

type serveConfig struct {
	retries         uint64
	shutdownTimeout time.Duration
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().Uint64Var(&cfg.retries, "connect-retries", defaultConnectRetries, "retries per dependency while connecting at startup")
	cmd.Flags().DurationVar(&cfg.shutdownTimeout, "shutdown-timeout", defaultShutdownTimeout, "grace period for in-flight requests on shutdown")

	return cmd
}

func runServe(cmd *cobra.Command, sc *serveConfig) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	a, err := buildApp(ctx, cfg, sc.retries)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}

	auditCtx, stopAudit := context.WithCancel(context.Background())
	a.audit.Start(auditCtx)

	e := api.NewRouter(api.Deps{
		Auth:   a.auth,
		Checks: a.readinessChecks(),
		Log:    logger.Component("http"),
		Env:    cfg.Env,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := e.Shutdown(shutdownCtx); err != nil {
		shutdownErr = oops.Code("SHUTDOWN_FAILED").With("component", "http").Wrap(err)
		log.Error().Err(err).Msg("http shutdown failed")
	}

	stopAudit()
	a.audit.Wait()
	a.close(shutdownCtx)

	log.Info().Msg("server stopped")
	return shutdownErr
}
