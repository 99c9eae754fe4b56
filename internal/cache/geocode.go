package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

const geocodeKeyPrefix = "geo:"

// GetGeocode returns a cached resolver outcome. ok is false on a miss.
func (c *Cache) GetGeocode(ctx context.Context, key string) (model.GeocodeEntry, bool, error) {
	result, err := c.client.HGetAll(ctx, geocodeKeyPrefix+key).Result()
	if err != nil {
		return model.GeocodeEntry{}, false, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(result) == 0 {
		return model.GeocodeEntry{}, false, nil
	}

	entry, err := decodeGeocodeFields(result)
	if err != nil {
		return model.GeocodeEntry{}, false, err
	}
	return entry, true, nil
}

// SetGeocode stores a resolver outcome for ttl.
func (c *Cache) SetGeocode(ctx context.Context, key string, entry model.GeocodeEntry, ttl time.Duration) error {
	k := geocodeKeyPrefix + key

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, k, encodeGeocodeFields(entry))
	pipe.Expire(ctx, k, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache geocode: %w", err)
	}
	return nil
}

func encodeGeocodeFields(entry model.GeocodeEntry) map[string]any {
	if entry.NotFound {
		return map[string]any{"found": "0"}
	}
	return map[string]any{
		"found": "1",
		"lat":   strconv.FormatFloat(entry.Point.Lat, 'f', -1, 64),
		"lng":   strconv.FormatFloat(entry.Point.Lng, 'f', -1, 64),
	}
}

func decodeGeocodeFields(fields map[string]string) (model.GeocodeEntry, error) {
	if fields["found"] != "1" {
		return model.GeocodeEntry{NotFound: true}, nil
	}

	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return model.GeocodeEntry{}, fmt.Errorf("parse cached lat: %w", err)
	}
	lng, err := strconv.ParseFloat(fields["lng"], 64)
	if err != nil {
		return model.GeocodeEntry{}, fmt.Errorf("parse cached lng: %w", err)
	}

	return model.GeocodeEntry{Point: model.Point{Lat: lat, Lng: lng}}, nil
}
