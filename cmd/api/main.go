// Package main is the entrypoint for the zbor-gradjana API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/cache"
	"github.com/Sobot/zbor-gradjana/internal/config"
	"github.com/Sobot/zbor-gradjana/internal/geocode"
	"github.com/Sobot/zbor-gradjana/internal/handler"
	"github.com/Sobot/zbor-gradjana/internal/metrics"
	"github.com/Sobot/zbor-gradjana/internal/middleware"
	"github.com/Sobot/zbor-gradjana/internal/repository"
	"github.com/Sobot/zbor-gradjana/internal/server"
	"github.com/Sobot/zbor-gradjana/internal/service"
)

// localCacheCleanup is how often expired L1 geocode entries are purged.
const localCacheCleanup = 10 * time.Minute

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", config.SanitizeError(err))
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := auth.ValidateSigningKey(cfg.JWTSigningKey); err != nil {
		logger.Error("invalid JWT_SIGNING_KEY", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		if err := migrate(ctx, cfg); err != nil {
			logger.Error("failed to apply migrations", "error", config.SanitizeError(err, cfg.DatabaseURL))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewPrometheus()

	upstream, err := geocode.New(geocode.Config{
		Provider:  cfg.GeocoderProvider,
		APIKey:    cfg.GeocoderAPIKey,
		BaseURL:   cfg.GeocoderBaseURL,
		Country:   cfg.GeocoderCountry,
		UserAgent: cfg.GeocoderUserAgent,
		Timeout:   cfg.GeocoderTimeout,
	})
	if err != nil {
		logger.Error("failed to configure geocoder", "error", err)
		os.Exit(1)
	}
	resolver := geocode.NewCached(upstream, geocode.CachedOptions{
		Namespace:   strings.ToLower(cfg.GeocoderProvider),
		Country:     cfg.GeocoderCountry,
		TTL:         cfg.GeocodeCacheTTL,
		NegativeTTL: cfg.GeocodeNegTTL,
		Tiers: []geocode.Tier{
			{Name: "local", Cache: cache.NewLocal(cfg.GeocodeNegTTL, localCacheCleanup)},
			{Name: "redis", Cache: cacheClient},
		},
		Logger:  logger,
		Metrics: recorder,
	})

	tokens := auth.NewTokens(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	assemblies := service.NewAssemblyService(repo, recorder, logger)
	registrations := service.NewRegistrationService(repo, resolver, recorder, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Logger:        logger,
		Assemblies:    handler.NewAssemblyHandler(assemblies, logger),
		Registrations: handler.NewRegistrationHandler(registrations, logger),
		Health: handler.NewHealthHandler(
			handler.HealthCheck{Name: "postgres", Checker: repo},
			handler.HealthCheck{Name: "redis", Checker: cacheClient},
		),
		Metrics:  recorder.Handler(),
		Verifier: tokens,
		RateLimit: middleware.RateLimitConfig{
			Logger:        logger,
			Limiter:       cacheClient,
			Enabled:       cfg.RateLimitEnabled,
			UserPerMinute: cfg.RateLimitUserRPM,
			UserBurst:     cfg.RateLimitUserBurst,
			IPPerSecond:   cfg.RateLimitIPRPS,
			IPBurst:       cfg.RateLimitIPBurst,
		},
		CORS:        corsCfg,
		Security:    middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		MaxBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the pool.
	srv.OnShutdown("postgres", repo.Shutdown)
	srv.OnShutdown("redis", cacheClient.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"geocoder", cfg.GeocoderProvider,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *config.Config) error {
	m, err := repository.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
