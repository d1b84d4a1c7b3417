// Package api provides the HTTP API for Pushlane.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/pushlane/pushlane/internal/api/handler"
	"github.com/pushlane/pushlane/internal/api/middleware"
	"github.com/pushlane/pushlane/internal/auth"
	"github.com/pushlane/pushlane/internal/featureflags"
	"github.com/pushlane/pushlane/internal/provider/resilience"
	"github.com/pushlane/pushlane/internal/registration"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version             string
	BuildTime           string
	Logger              zerolog.Logger
	ServiceName         string
	Metrics             *middleware.Metrics
	TokenVerifier       *auth.Verifier
	RegistrationService *registration.Service
	FeatureFlagService  *featureflags.Service
	Pool                *pgxpool.Pool
	ProviderRegistry    *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pushlane-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers
	r.Use(middleware.RequireTLS)           // HTTPS enforcement (opt-in)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.ProviderRegistry)
	deviceHandler := handler.NewDeviceHandler(cfg.RegistrationService)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Service auth middleware (pass-through when no verifier is configured)
	serviceAuth := middleware.ServiceAuth(cfg.TokenVerifier)

	// Rate limit middleware for different endpoint categories
	standardRateLimit := middleware.RateLimitByCaller(middleware.StandardRateLimit)
	adminRateLimit := middleware.RateLimitByCaller(middleware.AdminRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires a service token
			r.With(serviceAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Device registration endpoints (service-to-service)
		r.Route("/devices", func(r chi.Router) {
			r.Use(serviceAuth)
			r.Use(standardRateLimit)
			r.Post("/", deviceHandler.RegisterDevice)
			r.Post("/batch", deviceHandler.RegisterDeviceBatch)
			r.Put("/status", deviceHandler.UpdateDeviceStatus)
			r.Post("/delete", deviceHandler.RemoveDevice)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(serviceAuth)
			r.Use(adminRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
