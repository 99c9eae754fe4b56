package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurity_Headers(t *testing.T) {
	want := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "strict-origin-when-cross-origin",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
		"Permissions-Policy":           "geolocation=(), microphone=(), camera=()",
		"Cache-Control":                "no-store",
	}
	const hsts = "max-age=31536000; includeSubDomains"

	for _, dev := range []bool{false, true} {
		rec := httptest.NewRecorder()
		Security(SecurityConfig{IsDevelopment: dev})(respondWith(http.StatusOK)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/assemblies", nil))

		for header, value := range want {
			if got := rec.Header().Get(header); got != value {
				t.Errorf("dev=%v: %s = %q, want %q", dev, header, got, value)
			}
		}

		wantHSTS := hsts
		if dev {
			wantHSTS = ""
		}
		if got := rec.Header().Get("Strict-Transport-Security"); got != wantHSTS {
			t.Errorf("dev=%v: Strict-Transport-Security = %q, want %q", dev, got, wantHSTS)
		}
	}
}

func TestMaxBodySize(t *testing.T) {
	const limit = 64
	small := `{"name":"Zbor"}`
	large := `{"name":"` + strings.Repeat("z", 2*limit) + `"}`

	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"within limit", small, int64(len(small)), http.StatusOK},
		{"declared length over limit", large, int64(len(large)), http.StatusRequestEntityTooLarge},
		{"chunked body over limit", large, -1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			h := MaxBodySize(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				if _, err := io.ReadAll(r.Body); err != nil {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/assemblies", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.contentLength > limit {
				if reached {
					t.Error("handler reached despite declared length over limit")
				}
				var body errorBody
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Code != "PAYLOAD_TOO_LARGE" {
					t.Errorf("error body = %+v (%v), want PAYLOAD_TOO_LARGE", body, err)
				}
			}
		})
	}
}

func TestMaxBodySize_DefaultLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.ContentLength = DefaultMaxRequestBodySize + 1
	rec := httptest.NewRecorder()
	MaxBodySize(0)(respondWith(http.StatusOK)).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
