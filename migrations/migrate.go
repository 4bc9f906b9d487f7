package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

const createVersionTable = `CREATE TABLE IF NOT EXISTS public.schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Up applies every embedded *.up.sql file that has not been recorded in
// schema_migrations, in lexical order, each in its own transaction.
func Up(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("migrations.Up: create version table: %w", err)
	}

	files, err := upFiles(FS)
	if err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}

	for _, name := range files {
		version := strings.TrimSuffix(name, ".up.sql")
		applied, err := isApplied(ctx, db, version)
		if err != nil {
			return fmt.Errorf("migrations.Up: %w", err)
		}
		if applied {
			continue
		}
		if err := apply(ctx, db, name, version); err != nil {
			return fmt.Errorf("migrations.Up: %w", err)
		}
		slog.Info("migration applied", "version", version)
	}
	return nil
}

func upFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM public.schema_migrations WHERE version = $1)`, version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", version, err)
	}
	return exists, nil
}

func apply(ctx context.Context, db *sql.DB, name, version string) error {
	content, err := fs.ReadFile(FS, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO public.schema_migrations (version) VALUES ($1)`, version,
	); err != nil {
		return fmt.Errorf("record %s: %w", version, err)
	}
	return tx.Commit()
}
