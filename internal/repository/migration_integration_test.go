//go:build integration

package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sobot/zbor-gradjana/internal/testutil"
)

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	tables := map[string][]string{
		"users":         {"id", "name", "created_at"},
		"assemblies":    {"id", "name", "scheduled_at", "location", "boundary", "latitude", "longitude", "user_id", "created_at"},
		"registrations": {"id", "name", "municipality", "street_name", "street_number", "latitude", "longitude", "user_id", "created_at"},
	}

	for table, columns := range tables {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Fatalf("Table %q should exist after migrations", table)
			}
			for _, col := range columns {
				ok, err := columnExists(ctx, pool, table, col)
				if err != nil {
					t.Fatalf("columnExists failed: %v", err)
				}
				if !ok {
					t.Errorf("Column %q should exist in %s", col, table)
				}
			}
		})
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	longName := strings.Repeat("a", 201)
	_, err := pool.Exec(ctx, `
		INSERT INTO assemblies (id, name, scheduled_at, latitude, longitude, user_id)
		VALUES ('a1', $1, NOW(), 44.8, 20.4, 'user-a')
	`, longName)
	if err == nil {
		t.Error("Expected length violation for assembly name > 200 chars")
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO registrations (id, name, municipality, street_name, street_number, user_id)
		VALUES ('r1', 'Ana', 'Savski Venac', 'Kneza Miloša', '12', 'user-a')
	`)
	if err == nil {
		t.Error("Expected not-null violation for registration without coordinates")
	}
}

func TestIntegrationMigration_DownAndUp(t *testing.T) {
	ctx, pool, m := newMigrationTestEnv(t)

	if err := m.Down(ctx); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if v, _ := m.Version(ctx); v != 2 {
		t.Errorf("expected version 2 after one rollback, got %d", v)
	}
	exists, err := tableExists(ctx, pool, "registrations")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("registrations table should not exist after rollback")
	}

	if err := m.Up(ctx); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	// Up is a no-op once everything is applied.
	if err := m.Up(ctx); err != nil {
		t.Fatalf("second up should not fail: %v", err)
	}
	if v, _ := m.Version(ctx); v != 3 {
		t.Errorf("expected version 3, got %d", v)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool, *Migrator) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	m, err := NewMigrator(dbURL)
	if err != nil {
		t.Fatalf("open migrator: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	return ctx, pool, m
}
