// Package store persists content items, their terms and image metadata in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/content-feed/pkg/database"
	"github.com/lepinkainen/content-feed/pkg/feedtypes"
)

// ErrNotFound is returned when an item or image does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	published_at TIMESTAMP NOT NULL,
	image_id TEXT NOT NULL DEFAULT '',
	excerpt TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_published ON items(published_at);

CREATE TABLE IF NOT EXISTS item_terms (
	item_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (item_id, position)
);

CREATE TABLE IF NOT EXISTS images (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	alt TEXT NOT NULL DEFAULT '',
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0
);
`

// Store is the content access layer backed by a SQLite database
type Store struct {
	db  *database.Database
	now func() time.Time
}

// Open opens (and if needed creates) the store at path
func Open(path string) (*Store, error) {
	db, err := database.NewDatabase(database.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to open content database: %w", err)
	}

	s, err := New(db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close content database", "error", closeErr)
		}
		return nil, err
	}
	return s, nil
}

// New initializes the schema on an already open database
func New(db *database.Database) (*Store, error) {
	if err := db.ExecuteSchema(schema); err != nil {
		return nil, fmt.Errorf("failed to create content schema: %w", err)
	}

	slog.Debug("Content schema initialized", "path", db.Path())
	return &Store{db: db, now: time.Now}, nil
}

// Database exposes the underlying connection, e.g. for a render cache
func (s *Store) Database() *database.Database {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveItem inserts or updates item and replaces its terms, keeping their order
func (s *Store) SaveItem(item *Item) error {
	if item.ID == "" {
		return fmt.Errorf("item id is empty")
	}
	item.UpdatedAt = s.now().UTC()

	err := s.db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO items (id, title, link, published_at, image_id, excerpt, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				link = excluded.link,
				published_at = excluded.published_at,
				image_id = excluded.image_id,
				excerpt = excluded.excerpt,
				updated_at = excluded.updated_at`,
			item.ID, item.ItemTitle, item.ItemLink, item.Published.UTC(), item.ItemImageID, item.ItemExcerpt, item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert item: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM item_terms WHERE item_id = ?`, item.ID); err != nil {
			return fmt.Errorf("failed to clear terms: %w", err)
		}

		for pos, term := range item.ItemTerms {
			if _, err := tx.Exec(`INSERT INTO item_terms (item_id, position, name) VALUES (?, ?, ?)`,
				item.ID, pos, term.Name); err != nil {
				return fmt.Errorf("failed to insert term %q: %w", term.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save item %s: %w", item.ID, err)
	}

	slog.Debug("Saved item", "id", item.ID, "title", item.ItemTitle, "terms", len(item.ItemTerms))
	return nil
}

// DeleteItem removes an item and its terms
func (s *Store) DeleteItem(id string) error {
	return s.db.Transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		if _, err := tx.Exec(`DELETE FROM item_terms WHERE item_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete terms: %w", err)
		}
		return nil
	})
}

// Item returns a single item with its terms
func (s *Store) Item(id string) (*Item, error) {
	var item Item
	err := s.db.DB().QueryRow(`
		SELECT id, title, link, published_at, image_id, excerpt, updated_at
		FROM items WHERE id = ?`, id).Scan(
		&item.ID, &item.ItemTitle, &item.ItemLink, &item.Published,
		&item.ItemImageID, &item.ItemExcerpt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item %s: %w", id, err)
	}

	terms, err := s.terms(id)
	if err != nil {
		return nil, err
	}
	item.ItemTerms = terms

	return &item, nil
}

// RecentItems returns up to limit items, newest first. limit <= 0 returns all items.
func (s *Store) RecentItems(limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	slog.Debug("Querying recent items", "limit", limit)
	rows, err := s.db.DB().Query(`
		SELECT id, title, link, published_at, image_id, excerpt, updated_at
		FROM items ORDER BY published_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	var items []*Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.ItemTitle, &item.ItemLink, &item.Published,
			&item.ItemImageID, &item.ItemExcerpt, &item.UpdatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	_ = rows.Close()

	// Terms are loaded after the item cursor is closed.
	for _, item := range items {
		terms, err := s.terms(item.ID)
		if err != nil {
			return nil, err
		}
		item.ItemTerms = terms
	}

	slog.Debug("Retrieved items from database", "count", len(items))
	return items, nil
}

func (s *Store) terms(itemID string) ([]feedtypes.Term, error) {
	rows, err := s.db.DB().Query(`SELECT name FROM item_terms WHERE item_id = ? ORDER BY position`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms for %s: %w", itemID, err)
	}
	defer func() { _ = rows.Close() }()

	var terms []feedtypes.Term
	for rows.Next() {
		var t feedtypes.Term
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// SaveImage inserts or replaces image metadata
func (s *Store) SaveImage(img *Image) error {
	if img.ID == "" {
		return fmt.Errorf("image id is empty")
	}

	_, err := s.db.DB().Exec(`
		INSERT INTO images (id, path, alt, width, height) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			alt = excluded.alt,
			width = excluded.width,
			height = excluded.height`,
		img.ID, img.Path, img.Alt, img.Width, img.Height)
	if err != nil {
		return fmt.Errorf("failed to save image %s: %w", img.ID, err)
	}
	return nil
}

// Image returns metadata for an image id
func (s *Store) Image(id string) (*Image, error) {
	var img Image
	err := s.db.DB().QueryRow(`SELECT id, path, alt, width, height FROM images WHERE id = ?`, id).
		Scan(&img.ID, &img.Path, &img.Alt, &img.Width, &img.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query image %s: %w", id, err)
	}
	return &img, nil
}

// Stats returns row counts for items, terms and images
func (s *Store) Stats() (Stats, error) {
	var st Stats
	queries := []struct {
		table string
		dest  *int
	}{
		{"items", &st.Items},
		{"item_terms", &st.Terms},
		{"images", &st.Images},
	}

	for _, q := range queries {
		if err := s.db.DB().QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return st, nil
}
