package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zbor"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	recordsCreated      *prometheus.CounterVec
	recordsUpdated      *prometheus.CounterVec
	recordsDeleted      *prometheus.CounterVec
	authorizationDenied *prometheus.CounterVec
	geocodeLookups      *prometheus.CounterVec
	geocodeCache        *prometheus.CounterVec
	geocodeDuration     prometheus.Histogram
	registrationFailed  *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry, including the
// Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		recordsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Records created, by kind.",
		}, []string{"kind"}),
		recordsUpdated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_updated_total",
			Help:      "Records updated, by kind.",
		}, []string{"kind"}),
		recordsDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Records deleted, by kind.",
		}, []string{"kind"}),
		authorizationDenied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denied_total",
			Help:      "Mutations rejected because the caller is not the owner.",
		}, []string{"kind"}),
		geocodeLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Address resolutions, by outcome.",
		}, []string{"outcome"}),
		geocodeCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups, by result.",
		}, []string{"result"}),
		geocodeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_duration_seconds",
			Help:      "Time spent resolving addresses.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		registrationFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_failures_total",
			Help:      "Registration submissions that failed, by workflow stage.",
		}, []string{"stage"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry { return p.registry }

func (p *PrometheusRecorder) IncRecordCreated(kind string) {
	p.recordsCreated.WithLabelValues(kind).Inc()
}
func (p *PrometheusRecorder) IncRecordUpdated(kind string) {
	p.recordsUpdated.WithLabelValues(kind).Inc()
}
func (p *PrometheusRecorder) IncRecordDeleted(kind string) {
	p.recordsDeleted.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncAuthorizationDenied(kind string) {
	p.authorizationDenied.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncGeocodeLookup(outcome string) {
	p.geocodeLookups.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveGeocodeDuration(duration time.Duration) {
	p.geocodeDuration.Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncGeocodeCache(result string) {
	p.geocodeCache.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncRegistrationFailed(stage string) {
	p.registrationFailed.WithLabelValues(stage).Inc()
}
