package site

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/margay/margay/internal/errs"
)

// Cache stores rendered HTML keyed by the SHA-256 of the source content,
// so unchanged documents skip rendering across builds. Use ":memory:"
// for an ephemeral cache.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (and if needed initializes) the cache database.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryStorage, "open cache database")
	}
	// The cache is hit from one build goroutine; a single connection
	// also sidesteps sqlite write contention.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS rendered (
		content_hash TEXT PRIMARY KEY,
		html BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, errs.CategoryStorage, "initialize cache schema")
	}
	return &Cache{db: db}, nil
}

// Key derives the cache key for a document's source bytes.
func Key(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached HTML for key, with ok reporting a hit.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var html []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT html FROM rendered WHERE content_hash = ?", key,
	).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(err, errs.CategoryStorage, "read cache entry")
	}
	return string(html), true, nil
}

// Put stores rendered HTML under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key, html string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO rendered (content_hash, html, created_at) VALUES (?, ?, ?)",
		key, []byte(html), time.Now().Unix(),
	)
	if err != nil {
		return errs.Wrap(err, errs.CategoryStorage, "write cache entry")
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error { return c.db.Close() }
