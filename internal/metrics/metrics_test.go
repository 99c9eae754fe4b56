package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRecordCreated(KindAssembly)
	m.IncRecordCreated(KindAssembly)
	m.IncRecordDeleted(KindRegistration)
	m.IncAuthorizationDenied(KindAssembly)
	m.IncGeocodeLookup("not_found")
	m.IncRegistrationFailed("resolving")
	m.ObserveGeocodeDuration(150 * time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RecordsCreated[KindAssembly])
	assert.Equal(t, uint64(1), snap.RecordsDeleted[KindRegistration])
	assert.Equal(t, uint64(1), snap.AuthorizationDenied[KindAssembly])
	assert.Equal(t, uint64(1), snap.GeocodeLookups["not_found"])
	assert.Equal(t, uint64(1), snap.RegistrationFailures["resolving"])
	assert.EqualValues(t, 1, snap.GeocodeDurationCount)
	assert.Equal(t, int64(150*time.Millisecond), snap.GeocodeDurationTotalNs)
}

func TestInMemory_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRecordCreated(KindAssembly)
	snap := m.Snapshot()
	m.IncRecordCreated(KindAssembly)

	assert.Equal(t, uint64(1), snap.RecordsCreated[KindAssembly], "snapshot mutated after capture")
}

func TestPrometheus_RecordsAndServes(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.IncRecordCreated(KindRegistration)
	p.IncGeocodeCache("hit_local")
	p.ObserveGeocodeDuration(20 * time.Millisecond)

	assert.Equal(t, float64(1), promtest.ToFloat64(p.recordsCreated.WithLabelValues(KindRegistration)))

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `zbor_records_created_total{kind="registration"} 1`)
	assert.Contains(t, string(body), `zbor_geocode_cache_total{result="hit_local"} 1`)
	assert.Contains(t, string(body), `zbor_geocode_duration_seconds_count 1`)
}
