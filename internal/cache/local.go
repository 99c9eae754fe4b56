package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// Local cache defaults.
const (
	DefaultLocalExpiration = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Local is an in-process geocode cache. It sits in front of Redis so repeat
// lookups from the same instance skip the network entirely.
type Local struct {
	cache *gocache.Cache
}

// NewLocal creates an in-process cache with the given default expiration.
func NewLocal(defaultExpiration, cleanupInterval time.Duration) *Local {
	return &Local{cache: gocache.New(defaultExpiration, cleanupInterval)}
}

// GetGeocode returns a cached resolver outcome. ok is false on a miss.
func (l *Local) GetGeocode(_ context.Context, key string) (model.GeocodeEntry, bool, error) {
	value, found := l.cache.Get(key)
	if !found {
		return model.GeocodeEntry{}, false, nil
	}
	entry, ok := value.(model.GeocodeEntry)
	if !ok {
		l.cache.Delete(key)
		return model.GeocodeEntry{}, false, nil
	}
	return entry, true, nil
}

// SetGeocode stores a resolver outcome for ttl.
func (l *Local) SetGeocode(_ context.Context, key string, entry model.GeocodeEntry, ttl time.Duration) error {
	l.cache.Set(key, entry, ttl)
	return nil
}

// ItemCount returns the number of unexpired entries.
func (l *Local) ItemCount() int {
	return l.cache.ItemCount()
}
