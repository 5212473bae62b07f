package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kireshiki/Universalis/internal/handler"
	"github.com/kireshiki/Universalis/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler       *handler.Handler
	MarketHandler *handler.MarketHandler
	UploadHandler *handler.UploadHandler
	ExtraHandler  *handler.ExtraHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}
	r.Handle("/metrics", promhttp.Handler())

	if cfg.UploadHandler != nil {
		r.Post("/upload/{apiKey}", cfg.UploadHandler.Upload)
	}

	r.Route("/api/v2", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
		}

		if cfg.ExtraHandler != nil {
			r.Get("/tax-rates", cfg.ExtraHandler.TaxRates)
			r.Get("/extra/stats/upload-history", cfg.ExtraHandler.UploadHistory)
		}

		if cfg.MarketHandler != nil {
			r.Get("/history/{itemId}/{worldOrDc}", cfg.MarketHandler.History)
			r.Get("/{itemId}/{worldOrDc}", cfg.MarketHandler.CurrentListings)
		}
	})

	return r
}
