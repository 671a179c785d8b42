// Package database wraps the SQLite connection shared by the content store and render cache.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/content-feed/pkg/filesystem"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Database represents a thread-safe database connection
type Database struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Config holds database configuration
type Config struct {
	Path   string
	Driver string
}

// DefaultConfig returns the default database configuration
func DefaultConfig() Config {
	return Config{
		Path:   "content.db",
		Driver: "sqlite",
	}
}

// NewDatabase opens the database at config.Path, creating parent directories as needed
func NewDatabase(config Config) (*Database, error) {
	if config.Driver == "" {
		config.Driver = "sqlite"
	}
	if config.Path == "" {
		config.Path = DefaultConfig().Path
	}

	if err := filesystem.EnsureDirectoryExists(config.Path); err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.Driver == "sqlite" {
		if err := configureSQLite(db); err != nil {
			closeQuietly(db)
			return nil, err
		}
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Debug("Database opened", "path", config.Path)
	return &Database{db: db, dbPath: config.Path}, nil
}

func configureSQLite(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to read journal mode: %w", err)
	}

	if !strings.EqualFold(journalMode, "wal") {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=memory",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	return nil
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// Close closes the database connection
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// DB returns the underlying sql.DB instance (thread-safe)
func (db *Database) DB() *sql.DB {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.db
}

// Path returns the database file path
func (db *Database) Path() string {
	return db.dbPath
}

// ExecuteSchema executes a schema statement
func (db *Database) ExecuteSchema(schema string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(schema)
	return err
}

// Transaction executes a function within a database transaction
func (db *Database) Transaction(fn func(*sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				slog.Error("Failed to rollback transaction", "error", rollbackErr)
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.Error("Failed to rollback transaction", "error", rollbackErr)
		}
		return err
	}

	return tx.Commit()
}

// Info returns the SQLite version and table count
func (db *Database) Info() (map[string]any, error) {
	info := make(map[string]any)

	var version string
	if err := db.DB().QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to get SQLite version: %w", err)
	}
	info["sqlite_version"] = version

	var tableCount int
	if err := db.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&tableCount); err != nil {
		return nil, fmt.Errorf("failed to get table count: %w", err)
	}
	info["table_count"] = tableCount
	info["path"] = db.dbPath

	return info, nil
}
