package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed sqlite_migrations/*.sql
var sqliteMigrationsFS embed.FS

// SQLite wraps a database/sql handle on a SQLite file. SQLite allows a single
// writer, so the handle is limited to one connection and callers must not
// use it while holding a transaction on it.
type SQLite struct {
	DB     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database file at path.
// ":memory:" opens a private in-memory database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	logger.Info("sqlite database ready", slog.String("path", path))
	return &SQLite{DB: sqlDB, path: path, logger: logger}, nil
}

// RunMigrations applies the embedded SQLite migrations
func (s *SQLite) RunMigrations() error {
	return migrate(context.Background(), goose.DialectSQLite3, s.DB, sqliteMigrationsFS, "sqlite_migrations", s.logger)
}

// Close closes the handle
func (s *SQLite) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.logger.Warn("failed to close sqlite database", slog.Any("error", err))
		}
	}
}
