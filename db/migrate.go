package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"pacas-inventario/logging"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

const migrationTable = "schema_migrations"

// Migrate applies the embedded migrations for the connection's dialect
func (d *DB) Migrate(ctx context.Context) (int, error) {
	root := path.Join("migrations", string(d.Dialect))
	return ApplyMigrations(ctx, d.DB, migrationFiles, root)
}

// ApplyMigrations executes the .sql files under root at most once per file,
// in name order. It returns how many files were applied.
func ApplyMigrations(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, root string) (int, error) {
	if sqlDB == nil {
		return 0, fmt.Errorf("sql db is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := `CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`
	if _, err := sqlDB.ExecContext(ctx, createSQL); err != nil {
		return 0, fmt.Errorf("failed to ensure migration table: %w", err)
	}

	applied := 0
	for _, file := range sqlFiles {
		done, err := isApplied(ctx, sqlDB, file)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", file, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		statements := SplitStatements(ExtractUpMigration(string(content)))
		if len(statements) == 0 {
			continue
		}

		tx, err := sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin migration %s: %w", file, err)
		}

		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil && !IsAlreadyExistsError(err) {
				_ = tx.Rollback()
				return applied, fmt.Errorf("failed to exec migration %s: %w", file, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+migrationTable+" (name, applied_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
			file, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %s: %w", file, err)
		}
		applied++
		logging.Sugar.Infof("✅ Migration applied: %s", file)
	}

	return applied, nil
}

// ExtractUpMigration returns the SQL in the "-- +migrate Up" section, or the
// whole content when there are no markers
func ExtractUpMigration(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	upIdx := strings.Index(content, up)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, down)
	if downIdx == -1 || downIdx < upIdx {
		return content[upIdx+len(up):]
	}
	return content[upIdx+len(up) : downIdx]
}

// SplitStatements splits a migration body on semicolons, dropping comment-only parts
func SplitStatements(body string) []string {
	var statements []string
	for _, part := range strings.Split(body, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// IsAlreadyExistsError reports whether an error indicates idempotent DDL success
func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	err := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = $1", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
