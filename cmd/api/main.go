// Package main provides the entrypoint for the Pushlane API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pushlane/pushlane/internal/activation"
	"github.com/pushlane/pushlane/internal/api"
	"github.com/pushlane/pushlane/internal/api/middleware"
	"github.com/pushlane/pushlane/internal/auth"
	"github.com/pushlane/pushlane/internal/database"
	"github.com/pushlane/pushlane/internal/featureflags"
	"github.com/pushlane/pushlane/internal/provider/resilience"
	"github.com/pushlane/pushlane/internal/registration"
	"github.com/pushlane/pushlane/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "pushlane-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Pushlane API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize service token verifier (may be nil if not configured)
	var verifier *auth.Verifier
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey != "" {
		verifier = auth.NewVerifier(auth.VerifierConfig{
			SigningKey: jwtSigningKey,
			Audience:   serviceName,
		})
		log.Info().Msg("service token verifier initialized")
	} else {
		log.Warn().Msg("JWT_SIGNING_KEY not set - service auth disabled, not secure for production")
	}

	// Initialize activation status client with a resilient HTTP client
	activationBaseURL := os.Getenv("ACTIVATION_SERVICE_URL")
	if activationBaseURL == "" {
		activationBaseURL = "http://localhost:8081"
	}

	activationHTTPClient := resilience.NewClient(resilience.ClientConfig{
		Name:            activation.ProviderName,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	})
	registry := resilience.GlobalRegistry
	registry.Register(activation.ProviderName, activationHTTPClient)

	activationClient := activation.NewClient(activation.ClientConfig{
		BaseURL:    activationBaseURL,
		HTTPClient: activationHTTPClient,
	})
	log.Info().
		Str("base_url", activationBaseURL).
		Msg("activation status client initialized")

	// Initialize feature flags repository and service
	ffRepo := featureflags.NewPostgresRepository(pool)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize registration repository and service
	registrationRepo := registration.NewPostgresRepository(pool)
	registrationService := registration.NewService(registration.ServiceConfig{
		Repository:  registrationRepo,
		Activations: activationClient,
		Flags:       ffService,
		Logger:      log,
	})
	log.Info().Msg("registration service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:             Version,
		BuildTime:           BuildTime,
		Logger:              log,
		ServiceName:         serviceName,
		Metrics:             metrics,
		TokenVerifier:       verifier,
		RegistrationService: registrationService,
		FeatureFlagService:  ffService,
		Pool:                pool,
		ProviderRegistry:    registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
