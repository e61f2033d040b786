package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Config holds database configuration.
type Config struct {
	Path          string
	RetentionDays int
}

// DB wraps a sql.DB with retention settings.
type DB struct {
	db            *sql.DB
	retentionDays int
}

// RawDB returns the underlying *sql.DB for components that need direct access.
func (d *DB) RawDB() *sql.DB {
	return d.db
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Open creates the directory, opens the SQLite database, sets WAL mode and
// pragmas, and ensures all tables exist.
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// In WAL mode SQLite supports concurrent readers with a single writer.
	// Allow multiple connections so reads don't block behind writes.
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createTables(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	retDays := cfg.RetentionDays
	if retDays <= 0 {
		retDays = 90
	}

	d := &DB{db: sqlDB, retentionDays: retDays}

	// Run cleanup at startup so old data is purged even if the process never
	// lives long enough for a periodic sweep.
	if err := d.Cleanup(); err != nil {
		fmt.Fprintf(os.Stderr, "store: startup cleanup failed (non-fatal): %v\n", err)
	}

	return d, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS estimates (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			region TEXT NOT NULL,
			params_json TEXT NOT NULL,
			breakdown_json TEXT NOT NULL,
			monthly_operational_usd REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_estimates_created ON estimates(created_at)`,

		`CREATE TABLE IF NOT EXISTS audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			user TEXT NOT NULL,
			details TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Cleanup deletes estimate snapshots and audit records older than
// retentionDays. Snapshots are caches of past computations, never a source
// of truth, so aging them out is safe.
func (d *DB) Cleanup() error {
	cutoff := time.Now().AddDate(0, 0, -d.retentionDays).Format(time.RFC3339)

	stmts := []string{
		"DELETE FROM estimates WHERE created_at < ?",
		"DELETE FROM audit_events WHERE timestamp < ?",
	}
	for _, s := range stmts {
		if _, err := d.db.Exec(s, cutoff); err != nil {
			return fmt.Errorf("cleanup %q: %w", s[:30], err)
		}
	}
	return nil
}
