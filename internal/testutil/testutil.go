package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 707070

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls every embedded migration back and applies them again.
func ResetSchema(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.ResetContext(ctx, db, "."); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestAssembly creates an assembly owned by userID with sensible defaults.
func NewTestAssembly(t testing.TB, userID string) *model.Assembly {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Assembly{
		ID:          ulid.Make().String(),
		Name:        "Zbor Savski Venac",
		ScheduledAt: now.Add(72 * time.Hour),
		Location:    "Dom kulture, Kneza Miloša 12",
		Boundary: &model.Polygon{Ring: []model.LngLat{
			{20.450, 44.790},
			{20.460, 44.790},
			{20.460, 44.800},
			{20.450, 44.800},
		}},
		Point:     model.Point{Lat: 44.787197, Lng: 20.457273},
		UserID:    userID,
		CreatedAt: now,
	}
}

// NewTestRegistration creates a resolved registration owned by userID.
func NewTestRegistration(t testing.TB, userID string) *model.Registration {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Registration{
		ID:           ulid.Make().String(),
		Name:         "Marko Marković",
		Municipality: "Savski Venac",
		StreetName:   "Kneza Miloša",
		StreetNumber: "12",
		Point:        model.Point{Lat: 44.801, Lng: 20.456},
		UserID:       userID,
		CreatedAt:    now,
	}
}
