package handler

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/Sobot/zbor-gradjana/internal/metrics"
)

// MetricsHandler exposes in-memory counters in the Prometheus text format.
// Used when the Prometheus registry is disabled.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics writes the current snapshot.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeLabeled(w, "zbor_records_created_total", "kind", snap.RecordsCreated)
	writeLabeled(w, "zbor_records_updated_total", "kind", snap.RecordsUpdated)
	writeLabeled(w, "zbor_records_deleted_total", "kind", snap.RecordsDeleted)
	writeLabeled(w, "zbor_authorization_denied_total", "kind", snap.AuthorizationDenied)
	writeLabeled(w, "zbor_geocode_lookups_total", "outcome", snap.GeocodeLookups)
	writeLabeled(w, "zbor_geocode_cache_total", "result", snap.GeocodeCache)
	writeLabeled(w, "zbor_registration_failures_total", "stage", snap.RegistrationFailures)

	writeMetric(w, "zbor_geocode_duration_seconds_count %d\n", snap.GeocodeDurationCount)
	writeMetric(w, "zbor_geocode_duration_seconds_sum %.6f\n", float64(snap.GeocodeDurationTotalNs)/1e9)
}

func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
