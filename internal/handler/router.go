package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Sobot/zbor-gradjana/internal/middleware"
)

// RouterConfig collects everything the HTTP surface is built from.
type RouterConfig struct {
	Logger        *slog.Logger
	Assemblies    *AssemblyHandler
	Registrations *RegistrationHandler
	Health        *HealthHandler
	Metrics       http.Handler

	Verifier    middleware.TokenVerifier
	RateLimit   middleware.RateLimitConfig
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	MaxBodySize int64
}

// NewRouter wires middleware and routes.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RateLimit.Logger == nil {
		cfg.RateLimit.Logger = cfg.Logger
	}

	r := chi.NewRouter()
	h := New()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/", h.Index)
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Healthz)
		r.Get("/readyz", cfg.Health.Readyz)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
		r.Use(middleware.Authenticate(middleware.AuthConfig{
			Logger:   cfg.Logger,
			Verifier: cfg.Verifier,
		}))

		userLimit := middleware.RateLimitUser(cfg.RateLimit)

		r.Route("/assemblies", func(r chi.Router) {
			a := cfg.Assemblies
			r.Get("/", a.List)
			r.With(userLimit).Post("/", a.Create)
			r.With(userLimit).Delete("/", a.Delete)
			r.With(userLimit).Patch("/{id}", a.Update)
			r.With(userLimit).Delete("/{id}", a.Delete)
		})

		r.Route("/registrations", func(r chi.Router) {
			g := cfg.Registrations
			r.Get("/", g.List)
			r.With(middleware.RateLimitIP(cfg.RateLimit), userLimit).Post("/", g.Create)
			r.With(userLimit).Delete("/", g.Delete)
			r.With(userLimit).Patch("/{id}", g.Update)
			r.With(userLimit).Delete("/{id}", g.Delete)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
