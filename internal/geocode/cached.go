package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Sobot/zbor-gradjana/internal/metrics"
	"github.com/Sobot/zbor-gradjana/internal/model"
)

// Cache stores resolver outcomes. ok is false on a miss.
type Cache interface {
	GetGeocode(ctx context.Context, key string) (model.GeocodeEntry, bool, error)
	SetGeocode(ctx context.Context, key string, entry model.GeocodeEntry, ttl time.Duration) error
}

// Tier is one named cache level, consulted in order.
type Tier struct {
	Name  string
	Cache Cache
}

// CachedOptions configures a Cached resolver.
type CachedOptions struct {
	Namespace   string
	Country     string
	TTL         time.Duration
	NegativeTTL time.Duration
	Tiers       []Tier
	Logger      *slog.Logger
	Metrics     metrics.Recorder
}

// Cached wraps a Resolver with tiered caching and collapses concurrent
// lookups of the same address into one upstream call. Found and not-found
// outcomes are cached; unavailable outcomes never are. Cache failures fall
// through to the upstream resolver.
type Cached struct {
	next  Resolver
	opts  CachedOptions
	group singleflight.Group
}

// NewCached wraps next.
func NewCached(next Resolver, opts CachedOptions) *Cached {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoop()
	}
	if opts.Country == "" {
		opts.Country = DefaultCountry
	}
	return &Cached{next: next, opts: opts}
}

// Resolve returns a cached outcome or asks the wrapped resolver.
func (c *Cached) Resolve(ctx context.Context, addr model.Address) (model.Point, error) {
	key := CacheKey(c.opts.Namespace, FormatAddress(addr, c.opts.Country))

	if entry, ok := c.lookup(ctx, key); ok {
		return fromEntry(entry)
	}
	c.opts.Metrics.IncGeocodeCache("miss")

	ch := c.group.DoChan(key, func() (any, error) {
		// The shared call must outlive any single waiter's cancellation.
		callCtx := context.WithoutCancel(ctx)
		pt, err := c.next.Resolve(callCtx, addr)
		switch {
		case err == nil:
			c.store(callCtx, key, model.GeocodeEntry{Point: pt}, c.opts.TTL)
		case errors.Is(err, ErrAddressNotFound):
			c.store(callCtx, key, model.GeocodeEntry{NotFound: true}, c.opts.NegativeTTL)
		}
		return pt, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.Point{}, res.Err
		}
		return res.Val.(model.Point), nil
	case <-ctx.Done():
		return model.Point{}, fmt.Errorf("%w: %w", ErrResolverUnavailable, ctx.Err())
	}
}

// lookup walks the tiers and backfills faster tiers on a hit.
func (c *Cached) lookup(ctx context.Context, key string) (model.GeocodeEntry, bool) {
	for i, tier := range c.opts.Tiers {
		entry, ok, err := tier.Cache.GetGeocode(ctx, key)
		if err != nil {
			c.opts.Logger.Warn("geocode cache read failed",
				slog.String("tier", tier.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !ok {
			continue
		}

		c.opts.Metrics.IncGeocodeCache("hit_" + tier.Name)
		ttl := c.opts.TTL
		if entry.NotFound {
			ttl = c.opts.NegativeTTL
		}
		for _, faster := range c.opts.Tiers[:i] {
			_ = faster.Cache.SetGeocode(ctx, key, entry, ttl)
		}
		return entry, true
	}
	return model.GeocodeEntry{}, false
}

func (c *Cached) store(ctx context.Context, key string, entry model.GeocodeEntry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	for _, tier := range c.opts.Tiers {
		if err := tier.Cache.SetGeocode(ctx, key, entry, ttl); err != nil {
			c.opts.Logger.Warn("geocode cache write failed",
				slog.String("tier", tier.Name),
				slog.String("error", err.Error()),
			)
		}
	}
}

func fromEntry(entry model.GeocodeEntry) (model.Point, error) {
	if entry.NotFound {
		return model.Point{}, fmt.Errorf("%w: cached", ErrAddressNotFound)
	}
	return entry.Point, nil
}
