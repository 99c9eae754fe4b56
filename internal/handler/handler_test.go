package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_Index(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["service"] != "zbor-gradjana" {
		t.Errorf("unexpected service: %s", response["service"])
	}
	if response["version"] != Version {
		t.Errorf("unexpected version: %s", response["version"])
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	api := newTestAPI(t, belgrade)

	expectError(t, api.do(http.MethodGet, "/api/v1/nonexistent", "", ""), http.StatusNotFound, "NOT_FOUND")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	api := newTestAPI(t, belgrade)

	// Full replacement is not supported; updates are partial.
	expectError(t, api.do(http.MethodPut, "/api/v1/assemblies/abc", "user-a", `{}`), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

func TestRouter_PayloadTooLarge(t *testing.T) {
	api := newTestAPI(t, belgrade)

	body := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	expectError(t, api.do(http.MethodPost, "/api/v1/assemblies", "user-a", body), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE")
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	api := newTestAPI(t, belgrade)

	rec := api.do(http.MethodGet, "/api/v1/assemblies", "", "")

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on API responses")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id")
	}
}

func TestRouter_Metrics(t *testing.T) {
	api := newTestAPI(t, belgrade)
	createRegistration(t, api, "user-a", registrationBody)
	api.do(http.MethodPost, "/api/v1/registrations", "user-a", `{"name":"Ana","municipality":"Nowhere","street_name":"Nonexistent Street","street_number":"999"}`)

	rec := api.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`zbor_records_created_total{kind="registration"} 1`,
		`zbor_geocode_lookups_total{outcome="found"} 1`,
		`zbor_geocode_lookups_total{outcome="not_found"} 1`,
		`zbor_registration_failures_total{stage="resolving"} 1`,
		`zbor_geocode_duration_seconds_count 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
