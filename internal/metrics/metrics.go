// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Record kinds used as label values.
const (
	KindAssembly     = "assembly"
	KindRegistration = "registration"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Record lifecycle, labeled by kind
	IncRecordCreated(kind string)
	IncRecordUpdated(kind string)
	IncRecordDeleted(kind string)
	IncAuthorizationDenied(kind string)

	// Geocoding
	IncGeocodeLookup(outcome string) // outcome: "found", "not_found", "unavailable"
	ObserveGeocodeDuration(duration time.Duration)
	IncGeocodeCache(result string) // result: "hit_local", "hit_redis", "miss"

	// Registration workflow failures, labeled by stage
	IncRegistrationFailed(stage string) // stage: "validating", "resolving", "persisting"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
