package metrics

import (
	"maps"
	"sync"
	"time"
)

// Snapshot captures current in-memory counters keyed by label value.
type Snapshot struct {
	RecordsCreated         map[string]uint64
	RecordsUpdated         map[string]uint64
	RecordsDeleted         map[string]uint64
	AuthorizationDenied    map[string]uint64
	GeocodeLookups         map[string]uint64
	GeocodeCache           map[string]uint64
	RegistrationFailures   map[string]uint64
	GeocodeDurationCount   uint64
	GeocodeDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		RecordsCreated:       map[string]uint64{},
		RecordsUpdated:       map[string]uint64{},
		RecordsDeleted:       map[string]uint64{},
		AuthorizationDenied:  map[string]uint64{},
		GeocodeLookups:       map[string]uint64{},
		GeocodeCache:         map[string]uint64{},
		RegistrationFailures: map[string]uint64{},
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.snap
	out.RecordsCreated = maps.Clone(m.snap.RecordsCreated)
	out.RecordsUpdated = maps.Clone(m.snap.RecordsUpdated)
	out.RecordsDeleted = maps.Clone(m.snap.RecordsDeleted)
	out.AuthorizationDenied = maps.Clone(m.snap.AuthorizationDenied)
	out.GeocodeLookups = maps.Clone(m.snap.GeocodeLookups)
	out.GeocodeCache = maps.Clone(m.snap.GeocodeCache)
	out.RegistrationFailures = maps.Clone(m.snap.RegistrationFailures)
	return out
}

func (m *InMemoryRecorder) inc(counter map[string]uint64, label string) {
	m.mu.Lock()
	counter[label]++
	m.mu.Unlock()
}

// IncRecordCreated increments the created counter for kind.
func (m *InMemoryRecorder) IncRecordCreated(kind string) { m.inc(m.snap.RecordsCreated, kind) }

// IncRecordUpdated increments the updated counter for kind.
func (m *InMemoryRecorder) IncRecordUpdated(kind string) { m.inc(m.snap.RecordsUpdated, kind) }

// IncRecordDeleted increments the deleted counter for kind.
func (m *InMemoryRecorder) IncRecordDeleted(kind string) { m.inc(m.snap.RecordsDeleted, kind) }

// IncAuthorizationDenied increments the denied counter for kind.
func (m *InMemoryRecorder) IncAuthorizationDenied(kind string) {
	m.inc(m.snap.AuthorizationDenied, kind)
}

// IncGeocodeLookup increments the lookup counter for outcome.
func (m *InMemoryRecorder) IncGeocodeLookup(outcome string) { m.inc(m.snap.GeocodeLookups, outcome) }

// IncGeocodeCache increments the cache counter for result.
func (m *InMemoryRecorder) IncGeocodeCache(result string) { m.inc(m.snap.GeocodeCache, result) }

// IncRegistrationFailed increments the failure counter for stage.
func (m *InMemoryRecorder) IncRegistrationFailed(stage string) {
	m.inc(m.snap.RegistrationFailures, stage)
}

// ObserveGeocodeDuration records one resolver call duration.
func (m *InMemoryRecorder) ObserveGeocodeDuration(duration time.Duration) {
	m.mu.Lock()
	m.snap.GeocodeDurationCount++
	m.snap.GeocodeDurationTotalNs += duration.Nanoseconds()
	m.mu.Unlock()
}
