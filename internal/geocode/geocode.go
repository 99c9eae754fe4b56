// Package geocode resolves street addresses to coordinates through an
// external geocoding service.
//
// Every provider returns either a point, ErrAddressNotFound (the caller
// should correct the address) or ErrResolverUnavailable (the caller should
// retry later). Resolvers hold no per-request state and never retry.
package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// Resolver errors.
var (
	ErrAddressNotFound     = errors.New("address not found")
	ErrResolverUnavailable = errors.New("geocoding service unavailable")
)

// Provider names accepted by New.
const (
	ProviderGoogle    = "google"
	ProviderNominatim = "nominatim"
	ProviderDisabled  = "disabled"
)

// DefaultCountry is appended to every address before lookup.
const DefaultCountry = "Serbia"

// Resolver converts an address into a coordinate pair.
type Resolver interface {
	Resolve(ctx context.Context, addr model.Address) (model.Point, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Country   string
	UserAgent string
	Timeout   time.Duration
}

// New builds the resolver named by cfg.Provider.
func New(cfg Config) (Resolver, error) {
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	client := NewHTTPClient(cfg.Timeout)

	switch strings.ToLower(cfg.Provider) {
	case ProviderGoogle:
		return NewGoogle(client, cfg.APIKey, cfg.BaseURL, cfg.Country), nil
	case ProviderNominatim:
		return NewNominatim(client, cfg.BaseURL, cfg.UserAgent, cfg.Country), nil
	case ProviderDisabled, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}

// FormatAddress builds the query string sent to providers:
// "{street} {number}, {municipality}, {country}". Whitespace is collapsed.
func FormatAddress(addr model.Address, country string) string {
	street := strings.TrimSpace(collapse(addr.StreetName) + " " + collapse(addr.StreetNumber))
	parts := []string{street, collapse(addr.Municipality)}
	if c := collapse(country); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

// CacheKey derives a stable cache key for an address query.
func CacheKey(namespace, query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return namespace + ":" + hex.EncodeToString(sum[:16])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// complete reports whether every address component is present.
func complete(addr model.Address) bool {
	return collapse(addr.StreetName) != "" && collapse(addr.StreetNumber) != "" && collapse(addr.Municipality) != ""
}

// Disabled is the resolver used when no provider is configured.
type Disabled struct{}

// Resolve always fails with ErrResolverUnavailable.
func (Disabled) Resolve(context.Context, model.Address) (model.Point, error) {
	return model.Point{}, fmt.Errorf("%w: no geocoder configured", ErrResolverUnavailable)
}

var tracer = otel.Tracer("github.com/Sobot/zbor-gradjana/internal/geocode")

// startSpan opens a client span for one provider call.
func startSpan(ctx context.Context, provider string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "geocode."+provider,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("geocode.provider", provider)),
	)
}

// endSpan records the outcome of a provider call on span and ends it.
func endSpan(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("geocode.outcome", "found"))
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, ErrAddressNotFound):
		span.SetAttributes(attribute.String("geocode.outcome", "not_found"))
		span.SetStatus(codes.Ok, "")
	default:
		span.SetAttributes(attribute.String("geocode.outcome", "unavailable"))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Outcome classifies a resolver error for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrAddressNotFound):
		return "not_found"
	default:
		return "unavailable"
	}
}
