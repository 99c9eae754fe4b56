package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncRecordCreated(string)              {}
func (n *NoopRecorder) IncRecordUpdated(string)              {}
func (n *NoopRecorder) IncRecordDeleted(string)              {}
func (n *NoopRecorder) IncAuthorizationDenied(string)        {}
func (n *NoopRecorder) IncGeocodeLookup(string)              {}
func (n *NoopRecorder) ObserveGeocodeDuration(time.Duration) {}
func (n *NoopRecorder) IncGeocodeCache(string)               {}
func (n *NoopRecorder) IncRegistrationFailed(string)         {}
