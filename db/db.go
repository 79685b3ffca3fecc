package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"pacas-inventario/config"
	"pacas-inventario/logging"
)

// Dialect identifies the SQL database behind a connection
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB holds the database connection and the dialect it speaks.
// Queries use $N placeholders, which both drivers accept.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// PostgresDSN builds the PostgreSQL connection string from configuration.
// It returns "" when neither DATABASE_URL nor DB_HOST/DB_USER/DB_NAME are set.
func PostgresDSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return ""
	}

	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// Open connects to PostgreSQL when it is configured, otherwise to the SQLite file.
// A DATABASE_URL starting with "sqlite:" or "file:" selects SQLite explicitly.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if strings.HasPrefix(cfg.URL, "sqlite:") {
		return OpenSQLite(ctx, strings.TrimPrefix(cfg.URL, "sqlite:"))
	}
	if strings.HasPrefix(cfg.URL, "file:") {
		return OpenSQLite(ctx, strings.TrimPrefix(cfg.URL, "file:"))
	}
	if dsn := PostgresDSN(cfg); dsn != "" {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, cfg.SQLitePath)
}

// OpenPostgres opens a PostgreSQL connection pool through the pgx driver
func OpenPostgres(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Sugar.Infof("✓ Database connection established successfully (postgres)")
	return &DB{DB: sqlDB, Dialect: DialectPostgres}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	// A single writer keeps SQLite free of "database is locked" errors
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Sugar.Infof("✓ Database connection established successfully (sqlite: %s)", cleanPath)
	return &DB{DB: sqlDB, Dialect: DialectSQLite}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	if d != nil && d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
