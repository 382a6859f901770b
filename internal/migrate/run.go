// Package migrate applies the embedded Postgres schema for the session store.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// advisoryLockKey serializes concurrent Run calls across processes sharing a database.
const advisoryLockKey = 0x736f6361 // "soca"

// Run applies all embedded SQL migrations that have not been recorded yet.
// It is safe to call multiple times and from several processes at once.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := Files()
	if err != nil {
		return err
	}

	logger := slog.Default().With("component", "migrations")
	for _, f := range files {
		if applyErr := apply(ctx, db, logger, f); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

// Files lists the embedded migration file names in apply order.
func Files() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func apply(ctx context.Context, db *sql.DB, logger *slog.Logger, file string) error {
	version := strings.TrimSuffix(file, ".sql")
	body, err := migrationsFS.ReadFile("migrations/" + file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "failed to rollback migration", "error", rollbackErr, "version", version)
		}
	}()

	// Held until commit; a second runner waits here and then sees the version recorded.
	if _, lockErr := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); lockErr != nil {
		return fmt.Errorf("lock migrations: %w", lockErr)
	}

	var exists bool
	if scanErr := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&exists); scanErr != nil {
		return fmt.Errorf("check migration %s: %w", file, scanErr)
	}
	if exists {
		return nil
	}

	logger.InfoContext(ctx, "applying migration", "version", version)
	if _, execErr := tx.ExecContext(ctx, string(body)); execErr != nil {
		return fmt.Errorf("exec migration %s: %w", file, execErr)
	}
	if _, insErr := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); insErr != nil {
		return fmt.Errorf("record migration %s: %w", file, insErr)
	}
	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit migration %s: %w", file, commitErr)
	}
	return nil
}
