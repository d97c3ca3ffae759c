package db

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = "storefront_migrations"

type Migration struct {
	Name      string
	Content   string
	Checksum  string
	AppliedAt time.Time
}

func ComputeChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// Migrations returns the embedded migrations ordered by file name.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		content, err := fs.ReadFile(migrationFiles, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Name:     name,
			Content:  string(content),
			Checksum: ComputeChecksum(string(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})
	return migrations, nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			checksum TEXT NOT NULL
		)
	`, migrationsTable))
	return err
}

func appliedMigrations(ctx context.Context, pool *pgxpool.Pool) (map[string]Migration, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`SELECT name, applied_at, checksum FROM %s ORDER BY name`, migrationsTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Name, &m.AppliedAt, &m.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[m.Name] = m
	}
	return applied, rows.Err()
}

// Pending compares the embedded migrations with the recorded ones. An applied
// migration whose content changed is reported as an error.
func Pending(ctx context.Context, pool *pgxpool.Pool) ([]Migration, error) {
	if err := ensureMigrationsTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	all, err := Migrations()
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, pool)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, m := range all {
		recorded, ok := applied[m.Name]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if recorded.Checksum != m.Checksum {
			return nil, fmt.Errorf("migration %s was modified after being applied", m.Name)
		}
	}
	return pending, nil
}

// Migrate applies every pending migration, each in its own transaction, and
// returns the names applied.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	pending, err := Pending(ctx, pool)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range pending {
		if err := apply(ctx, pool, m); err != nil {
			return names, fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, m Migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.Content); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (name, checksum) VALUES ($1, $2)`, migrationsTable), m.Name, m.Checksum); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit(ctx)
}
