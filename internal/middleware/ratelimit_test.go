package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/cache"
	"github.com/Sobot/zbor-gradjana/internal/model"
)

type stubLimiter struct {
	result  *cache.RateLimitResult
	err     error
	userKey string
	ipKey   string
}

func (s *stubLimiter) CheckUserRateLimit(_ context.Context, userID string, _, _ int) (*cache.RateLimitResult, error) {
	s.userKey = userID
	return s.result, s.err
}

func (s *stubLimiter) CheckIPRateLimit(_ context.Context, ip string, _, _ int) (*cache.RateLimitResult, error) {
	s.ipKey = ip
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withCaller(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.ContextWithIdentity(r.Context(), &model.Identity{UserID: userID}))
}

func TestRateLimitUser(t *testing.T) {
	t.Parallel()

	denied := &cache.RateLimitResult{Allowed: false, RetryAfter: 7 * time.Second, ResetAt: time.Now()}
	allowed := &cache.RateLimitResult{Allowed: true, Remaining: 4, ResetAt: time.Now()}

	tests := []struct {
		name       string
		enabled    bool
		caller     string
		limiter    *stubLimiter
		wantStatus int
		wantKey    string
	}{
		{"disabled", false, "u-1", &stubLimiter{result: denied}, http.StatusOK, ""},
		{"anonymous passes", true, "", &stubLimiter{result: denied}, http.StatusOK, ""},
		{"allowed", true, "u-1", &stubLimiter{result: allowed}, http.StatusOK, "u-1"},
		{"denied", true, "u-1", &stubLimiter{result: denied}, http.StatusTooManyRequests, "u-1"},
		{"fails open", true, "u-1", &stubLimiter{err: errors.New("redis down")}, http.StatusOK, "u-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := RateLimitUser(RateLimitConfig{
				Logger:        discardLogger(),
				Limiter:       tt.limiter,
				Enabled:       tt.enabled,
				UserPerMinute: 60,
				UserBurst:     5,
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/assemblies", nil)
			if tt.caller != "" {
				req = withCaller(req, tt.caller)
			}
			rec := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.limiter.userKey != tt.wantKey {
				t.Errorf("limiter key = %q, want %q", tt.limiter.userKey, tt.wantKey)
			}
		})
	}
}

func TestRateLimitUser_DeniedResponse(t *testing.T) {
	t.Parallel()

	limiter := &stubLimiter{result: &cache.RateLimitResult{Allowed: false, RetryAfter: 7 * time.Second, ResetAt: time.Now()}}
	mw := RateLimitUser(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true, UserPerMinute: 60, UserBurst: 5})

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, withCaller(httptest.NewRequest(http.MethodPost, "/", nil), "u-1"))

	if got := rec.Header().Get("Retry-After"); got != "7" {
		t.Errorf("Retry-After = %q, want 7", got)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("X-RateLimit-Limit = %q, want 60", got)
	}

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body.Code)
	}
}

func TestRateLimitIP_UsesRemoteHost(t *testing.T) {
	t.Parallel()

	limiter := &stubLimiter{result: &cache.RateLimitResult{Allowed: true}}
	mw := RateLimitIP(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true, IPPerSecond: 1, IPBurst: 3})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if limiter.ipKey != "203.0.113.9" {
		t.Errorf("limiter ip = %q, want 203.0.113.9", limiter.ipKey)
	}
}

func TestRateLimitIP_Denied(t *testing.T) {
	t.Parallel()

	limiter := &stubLimiter{result: &cache.RateLimitResult{Allowed: false, RetryAfter: 0}}
	mw := RateLimitIP(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true, IPPerSecond: 1, IPBurst: 3})

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want at least 1", got)
	}
}
