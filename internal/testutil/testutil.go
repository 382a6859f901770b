// Package testutil provides shared helpers for tests that need real backing services.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/yoii-livecomm/socialauth/internal/migrate"
)

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

// TestDatabaseURL returns the DSN for integration tests, or "" when none is configured.
func TestDatabaseURL() string {
	return os.Getenv("TEST_DATABASE_URL")
}

// SkipIfNoTestDB skips the test unless TEST_DATABASE_URL points at a reachable Postgres.
// With TEST_REQUIRE_DB set the test fails instead.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()

	dsn := TestDatabaseURL()
	if dsn == "" {
		skipOrFail(t, requireDB(), "TEST_DATABASE_URL not set")
		return
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		skipOrFail(t, requireDB(), "test database not available: "+err.Error())
		return
	}
	defer closeAndLog(t, "probe DB", db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		skipOrFail(t, requireDB(), "test database not available: "+pingErr.Error())
	}
}

// SetupEphemeralSchemaDB creates a unique schema per test, points search_path at it, runs
// migrations, and drops the schema when the test completes.
func SetupEphemeralSchemaDB(t TestingTB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	adminDB := openDB(t, TestDatabaseURL())
	schema := generateSchemaName()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := adminDB.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		closeAndLog(t, "admin DB", adminDB)
		t.Fatalf("create schema %s: %v", schema, err)
	}

	u, err := url.Parse(TestDatabaseURL())
	if err != nil {
		closeAndLog(t, "admin DB", adminDB)
		t.Fatal("parse TEST_DATABASE_URL:", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	db := openDB(t, u.String())

	t.Logf("using ephemeral schema: %s", schema)
	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		closeAndLog(t, "schema DB", db)
		if _, dropErr := adminDB.ExecContext(cctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); dropErr != nil {
			t.Logf("warning: drop schema %s: %v", schema, dropErr)
		}
		closeAndLog(t, "admin DB", adminDB)
	})

	if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
		t.Fatal("run migrations in ephemeral schema:", migrateErr)
	}
	return db
}

// SetupTestRedis returns a client for TEST_REDIS_ADDR when set, otherwise for an
// in-process miniredis that is torn down with the test.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		mr := miniredis.NewMiniRedis()
		if err := mr.Start(); err != nil {
			t.Fatal("start miniredis:", err)
		}
		t.Cleanup(mr.Close)
		addr = mr.Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { closeAndLog(t, "redis client", client) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		skipOrFail(t, requireRedis(), fmt.Sprintf("redis not available at %s: %v", addr, err))
	}
	return client
}

// FixedTimeFunc returns a clock that always reports ts.
func FixedTimeFunc(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func openDB(t TestingTB, dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("open DB:", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		closeAndLog(t, "DB", db)
		t.Fatal("ping DB:", pingErr)
	}
	return db
}

// generateSchemaName creates a lowercase alphanumeric schema name with prefix.
func generateSchemaName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("t_%d", time.Now().UnixNano())
	}
	return "t_" + hex.EncodeToString(b)
}

func closeAndLog(t TestingTB, name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		t.Logf("warning: failed to close %s: %v", name, err)
	}
}

func skipOrFail(t TestingTB, required bool, reason string) {
	t.Helper()
	if required {
		t.Fatal(reason)
	}
	t.Skip(reason)
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }
