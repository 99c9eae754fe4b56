//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/testutil"
)

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

func TestIntegrationRepository_AssemblyRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	if err := repo.CreateUser(ctx, &model.User{ID: "user-a", Name: "Ana"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	a := testutil.NewTestAssembly(t, "user-a")
	if err := repo.CreateAssembly(ctx, a); err != nil {
		t.Fatalf("create assembly: %v", err)
	}
	if a.OwnerName != "Ana" {
		t.Errorf("OwnerName = %q, want Ana", a.OwnerName)
	}

	got, err := repo.GetAssemblyByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get assembly: %v", err)
	}
	if got.Name != a.Name || got.Location != a.Location || got.Point != a.Point {
		t.Errorf("assembly mismatch: got %+v want %+v", got, a)
	}
	if !got.ScheduledAt.Equal(a.ScheduledAt) {
		t.Errorf("ScheduledAt = %v, want %v", got.ScheduledAt, a.ScheduledAt)
	}
	if got.Boundary == nil || len(got.Boundary.Ring) != len(a.Boundary.Ring) {
		t.Fatalf("boundary not round-tripped: %+v", got.Boundary)
	}

	got.Name = "Renamed"
	got.Boundary = nil
	if err := repo.UpdateAssembly(ctx, got); err != nil {
		t.Fatalf("update assembly: %v", err)
	}
	updated, _ := repo.GetAssemblyByID(ctx, a.ID)
	if updated.Name != "Renamed" || updated.Boundary != nil {
		t.Errorf("update not applied: %+v", updated)
	}

	list, err := repo.ListAssemblies(ctx, model.AssemblyFilter{UserID: "user-a"})
	if err != nil {
		t.Fatalf("list assemblies: %v", err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	other, _ := repo.ListAssemblies(ctx, model.AssemblyFilter{UserID: "user-b"})
	if len(other) != 0 {
		t.Errorf("expected no assemblies for user-b, got %d", len(other))
	}

	if err := repo.DeleteAssembly(ctx, a.ID); err != nil {
		t.Fatalf("delete assembly: %v", err)
	}
	if _, err := repo.GetAssemblyByID(ctx, a.ID); !errors.Is(err, ErrAssemblyNotFound) {
		t.Errorf("expected ErrAssemblyNotFound, got %v", err)
	}
}

func TestIntegrationRepository_RegistrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	r := testutil.NewTestRegistration(t, "user-a")
	if err := repo.CreateRegistration(ctx, r); err != nil {
		t.Fatalf("create registration: %v", err)
	}

	got, err := repo.GetRegistrationByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get registration: %v", err)
	}
	if got.Point != r.Point || got.StreetName != r.StreetName || got.UserID != "user-a" {
		t.Errorf("registration mismatch: got %+v want %+v", got, r)
	}

	got.StreetNumber = "14"
	if err := repo.UpdateRegistration(ctx, got); err != nil {
		t.Fatalf("update registration: %v", err)
	}

	missing := testutil.NewTestRegistration(t, "user-a")
	if err := repo.UpdateRegistration(ctx, missing); !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("expected ErrRegistrationNotFound, got %v", err)
	}

	list, err := repo.ListRegistrations(ctx, model.RegistrationFilter{})
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	if len(list) != 1 || list[0].StreetNumber != "14" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if err := repo.DeleteRegistration(ctx, r.ID); err != nil {
		t.Fatalf("delete registration: %v", err)
	}
	if err := repo.DeleteRegistration(ctx, r.ID); !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("expected ErrRegistrationNotFound, got %v", err)
	}
}

func TestIntegrationRepository_CreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	u := &model.User{ID: "user-a", Name: "Ana"}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repo.CreateUser(ctx, u); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Ana" {
		t.Errorf("unexpected users: %+v", users)
	}
}
