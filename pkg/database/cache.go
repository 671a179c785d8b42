package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Cache stores rendered documents with an expiry time
type Cache struct {
	db        *Database
	tableName string
	now       func() time.Time
}

// NewCache creates the cache table if needed and returns a cache bound to it
func NewCache(db *Database, tableName string) (*Cache, error) {
	if !tableNamePattern.MatchString(tableName) {
		return nil, fmt.Errorf("invalid cache table name %q", tableName)
	}

	c := &Cache{db: db, tableName: tableName, now: time.Now}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_expires ON %[1]s(expires_at);
	`, tableName)

	if err := db.ExecuteSchema(schema); err != nil {
		return nil, fmt.Errorf("failed to create cache table %s: %w", tableName, err)
	}

	return c, nil
}

// Get returns the cached value for key if present and not expired
func (c *Cache) Get(key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = ? AND expires_at > ?`, c.tableName)

	var value string
	err := c.db.DB().QueryRow(query, key, c.now().UTC()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache value: %w", err)
	}

	return value, true, nil
}

// Set stores value under key for ttl
func (c *Cache) Set(key, value string, ttl time.Duration) error {
	now := c.now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`, c.tableName)

	if _, err := c.db.DB().Exec(query, key, value, now.Add(ttl), now); err != nil {
		return fmt.Errorf("failed to set cache value: %w", err)
	}

	return nil
}

// Clear removes every entry, expired or not
func (c *Cache) Clear() error {
	if _, err := c.db.DB().Exec(fmt.Sprintf(`DELETE FROM %s`, c.tableName)); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// CleanupExpired removes expired entries from the cache
func (c *Cache) CleanupExpired() error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= ?`, c.tableName)

	result, err := c.db.DB().Exec(query, c.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to cleanup expired entries: %w", err)
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected > 0 {
		slog.Debug("Cleaned up expired cache entries", "table", c.tableName, "count", rowsAffected)
	}

	return nil
}
