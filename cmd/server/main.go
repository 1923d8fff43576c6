package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpAdapter "github.com/antscrawling/cpfsim/internal/adapter/http"
	"github.com/antscrawling/cpfsim/internal/adapter/http/handler"
	postgresRepo "github.com/antscrawling/cpfsim/internal/adapter/repository/postgres"
	"github.com/antscrawling/cpfsim/internal/app"
	"github.com/antscrawling/cpfsim/internal/infrastructure/config"
	"github.com/antscrawling/cpfsim/internal/infrastructure/logger"
	"github.com/antscrawling/cpfsim/internal/infrastructure/metrics"
	"github.com/antscrawling/cpfsim/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "cpfsim-server",
	})

	ctx := context.Background()

	backend, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.StoreDriver).Msg("failed to open store")
	}
	defer backend.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Use cases
	simulationUC := usecase.NewSimulationUseCase(backend.Repo, backend.Refs, postgresRepo.NewULIDGenerator(), m, log)
	ledgerUC := usecase.NewLedgerUseCase(backend.Repo)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RunHandler:    handler.NewRunHandler(simulationUC, ledgerUC, cfg.HTTPMaxBodyBytes),
		HealthHandler: handler.NewHealthHandler(backend.Checks),
		Metrics:       m,
		Gatherer:      registry,
		Logger:        log,
	})

	server := newServer(cfg, router)

	go func() {
		log.Info().Str("addr", server.Addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort("", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
