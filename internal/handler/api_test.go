package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/geocode"
	"github.com/Sobot/zbor-gradjana/internal/handler/dto"
	"github.com/Sobot/zbor-gradjana/internal/metrics"
	"github.com/Sobot/zbor-gradjana/internal/middleware"
	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/repository"
	"github.com/Sobot/zbor-gradjana/internal/service"
)

const testSigningKey = "handler-test-signing-key-0123456789abcdef"

type addressBook map[string]model.Point

func (b addressBook) Resolve(_ context.Context, addr model.Address) (model.Point, error) {
	if p, ok := b[addr.StreetName+" "+addr.StreetNumber]; ok {
		return p, nil
	}
	return model.Point{}, geocode.ErrAddressNotFound
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	store  *repository.Memory
	tokens *auth.Tokens
}

func newTestAPI(t *testing.T, resolver geocode.Resolver) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemory()
	rec := metrics.NewInMemory()
	tokens := auth.NewTokens(testSigningKey, "", "")

	for _, u := range []model.User{{ID: "user-a", Name: "Ana"}, {ID: "user-b", Name: "Bojan"}} {
		if err := store.CreateUser(context.Background(), &u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	router := NewRouter(RouterConfig{
		Logger:        logger,
		Assemblies:    NewAssemblyHandler(service.NewAssemblyService(store, rec, logger), logger),
		Registrations: NewRegistrationHandler(service.NewRegistrationService(store, resolver, rec, logger), logger),
		Health:        NewHealthHandler(HealthCheck{Name: "postgres", Checker: store}),
		Metrics:       http.HandlerFunc(NewMetricsHandler(rec).Metrics),
		Verifier:      tokens,
		CORS:          middleware.DefaultCORSConfig(),
		Security:      middleware.SecurityConfig{IsDevelopment: true},
	})

	return &testAPI{t: t, router: router, store: store, tokens: tokens}
}

func (a *testAPI) token(userID string) string {
	a.t.Helper()
	tok, err := a.tokens.Issue(model.Identity{UserID: userID}, time.Hour)
	if err != nil {
		a.t.Fatalf("issue token: %v", err)
	}
	return tok
}

// do sends a request as userID; an empty userID is anonymous.
func (a *testAPI) do(method, path, userID, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := newRequest(method, path, body)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+a.token(userID))
	}
	return serve(a, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (body %s)", status, rec.Code, rec.Body.String())
	}
	resp := decode[dto.ErrorResponse](t, rec)
	if resp.Code != code {
		t.Errorf("expected code %s, got %s", code, resp.Code)
	}
}

var belgrade = addressBook{
	"Kneza Miloša 12":       {Lat: 44.801, Lng: 20.456},
	"Bulevar oslobođenja 7": {Lat: 45.2517, Lng: 19.8369},
}

const assemblyBody = `{
	"name": "Zbor Savski Venac",
	"scheduled_at": "2026-11-01T18:00:00Z",
	"location": "Park kod Mostarske petlje",
	"point": {"lat": 44.8, "lng": 20.45}
}`

const registrationBody = `{
	"name": "Ana Petrović",
	"municipality": "Savski Venac",
	"street_name": "Kneza Miloša",
	"street_number": "12"
}`

func newRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return httptest.NewRequest(method, path, r)
}

func serve(api *testAPI, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}
