package kv

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationLockID keys the advisory lock held while labcat migrates, so
// replicas starting together apply each file once.
const migrationLockID = 0x6c6162636174 // "labcat"

const (
	queryCreateMigrations = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	queryAppliedMigrations = `SELECT version FROM schema_migrations`
	queryRecordMigration   = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// migrationFiles lists the embedded migrations in version order. File
// names sort lexicographically by version.
func migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// pendingMigrations returns the files in all that are not in applied.
func pendingMigrations(all []string, applied map[string]bool) []string {
	var out []string
	for _, name := range all {
		if !applied[name] {
			out = append(out, name)
		}
	}
	return out
}

// RunMigrations applies the pending kv schema migrations in one
// transaction under an advisory lock. There are no down migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(migrationLockID)); err != nil {
			return fmt.Errorf("locking migrations: %w", err)
		}
		if _, err := tx.Exec(ctx, queryCreateMigrations); err != nil {
			return fmt.Errorf("creating schema_migrations table: %w", err)
		}

		rows, err := tx.Query(ctx, queryAppliedMigrations)
		if err != nil {
			return fmt.Errorf("listing applied migrations: %w", err)
		}
		versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("scanning applied migrations: %w", err)
		}
		applied := make(map[string]bool, len(versions))
		for _, v := range versions {
			applied[v] = true
		}

		for _, version := range pendingMigrations(files, applied) {
			stmt, err := migrationsFS.ReadFile(path.Join("migrations", version))
			if err != nil {
				return fmt.Errorf("reading migration %s: %w", version, err)
			}
			if _, err := tx.Exec(ctx, string(stmt)); err != nil {
				return fmt.Errorf("applying migration %s: %w", version, err)
			}
			if _, err := tx.Exec(ctx, queryRecordMigration, version); err != nil {
				return fmt.Errorf("recording migration %s: %w", version, err)
			}
		}
		return nil
	})
}
