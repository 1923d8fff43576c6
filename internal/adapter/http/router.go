package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/antscrawling/cpfsim/internal/adapter/http/handler"
	"github.com/antscrawling/cpfsim/internal/adapter/http/middleware"
	"github.com/antscrawling/cpfsim/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RunHandler    *handler.RunHandler
	HealthHandler *handler.HealthHandler
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Logger        zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", cfg.RunHandler.Create)
			r.Get("/", cfg.RunHandler.List)
			r.Get("/{id}", cfg.RunHandler.Get)
			r.Get("/{id}/rows", cfg.RunHandler.Rows)
			r.Get("/{id}/entries", cfg.RunHandler.Entries)
			r.Get("/{id}/consistency", cfg.RunHandler.Consistency)
		})
	})

	return r
}
