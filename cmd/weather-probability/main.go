package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/weather-probability/internal/api/http"
	"github.com/i474232898/weather-probability/internal/config"
	"github.com/i474232898/weather-probability/internal/geocode"
	"github.com/i474232898/weather-probability/internal/scheduler"
	"github.com/i474232898/weather-probability/internal/store"
	"github.com/i474232898/weather-probability/internal/weather"
	"github.com/i474232898/weather-probability/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sugar, err := newLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Historical provider with resilience (circuit breaker here, retries in the fetcher).
	provider, err := providers.New(cfg.Provider, httpClient, providers.Credentials{
		MeteomaticsUsername: cfg.MeteomaticsUsername,
		MeteomaticsPassword: cfg.MeteomaticsPassword,
		WeatherAPIKey:       cfg.WeatherAPIKey,
		OpenWeatherAPIKey:   cfg.OpenWeatherAPIKey,
	})
	if err != nil {
		sugar.Fatalw("failed to create provider", "provider", cfg.Provider, "error", err)
	}

	// Geocoder behind an in-memory cache with configured retention.
	var upstream weather.Resolver
	switch cfg.Geocoder {
	case "google":
		upstream = geocode.NewGoogleResolver(cfg.GoogleAPIKey)
	default:
		upstream = geocode.NewNominatimResolver(cfg.NominatimURL)
	}
	cache := store.NewMemoryStore(cfg.GeocodeCacheSize, cfg.GeocodeCacheTTL)
	resolver := geocode.NewCachingResolver(upstream, cache, sugar.Named("geocode"))

	// Core service orchestrating geocoding, fetching and analysis.
	service := weather.NewService(resolver, provider, weather.ServiceConfig{
		Window:               cfg.Window(),
		MaxConcurrentFetches: cfg.MaxConcurrentFetches,
		Fetcher:              cfg.FetcherConfig(),
		// Charts is left nil: no renderer ships with the service, so chart_base64 is omitted.
	}, sugar.Named("analysis"))

	// Scheduler that keeps the geocode cache warm and pruned.
	sched := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, resolver, sugar.Named("scheduler"))
	if err := sched.Start(); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-probability",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RequestTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				sugar.Errorw("request failed", "path", c.Path(), "status", code, "error", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-probability",
			"provider": service.ProviderName(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.RequestTimeout)

	go func() {
		sugar.Infow("listening", "port", cfg.Port, "provider", service.ProviderName(), "geocoder", cfg.Geocoder)
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Warnw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Errorw("error during shutdown", "error", err)
	}
}

func newLogger(env, level string) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if env == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	base, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}
