// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Identity tokens (HS256). The key must be at least 32 bytes.
	JWTSigningKey string `env:"JWT_SIGNING_KEY,required,notEmpty"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"zbor-gradjana"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"zbor-gradjana-api"`

	// Address resolution
	GeocoderProvider  string        `env:"GEOCODER_PROVIDER" envDefault:"google"`
	GeocoderAPIKey    string        `env:"GEOCODER_API_KEY"`
	GeocoderBaseURL   string        `env:"GEOCODER_BASE_URL"`
	GeocoderTimeout   time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"5s"`
	GeocoderCountry   string        `env:"GEOCODER_COUNTRY" envDefault:"Serbia"`
	GeocoderUserAgent string        `env:"GEOCODER_USER_AGENT"`
	GeocodeCacheTTL   time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"720h"`
	GeocodeNegTTL     time.Duration `env:"GEOCODE_NEGATIVE_TTL" envDefault:"1h"`

	// Rate limiting
	RateLimitEnabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitUserRPM   int  `env:"RATE_LIMIT_USER_RPM" envDefault:"60"`
	RateLimitUserBurst int  `env:"RATE_LIMIT_USER_BURST" envDefault:"10"`
	RateLimitIPRPS     int  `env:"RATE_LIMIT_IP_RPS" envDefault:"2"`
	RateLimitIPBurst   int  `env:"RATE_LIMIT_IP_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://zbor.rs,*.zbor.rs")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.AppPort))
	}
	switch strings.ToLower(c.GeocoderProvider) {
	case "google":
		if c.GeocoderAPIKey == "" {
			errs = append(errs, errors.New("GEOCODER_API_KEY is required for the google provider"))
		}
	case "nominatim", "disabled":
	default:
		errs = append(errs, fmt.Errorf("GEOCODER_PROVIDER must be google, nominatim or disabled, got %q", c.GeocoderProvider))
	}
	if c.GeocodeCacheTTL <= 0 {
		errs = append(errs, errors.New("GEOCODE_CACHE_TTL must be positive"))
	}
	if c.GeocodeNegTTL < 0 {
		errs = append(errs, errors.New("GEOCODE_NEGATIVE_TTL must not be negative"))
	}
	if c.RateLimitEnabled && (c.RateLimitUserRPM <= 0 || c.RateLimitIPRPS <= 0) {
		errs = append(errs, errors.New("rate limits must be positive when RATE_LIMIT_ENABLED is set"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
