// Package store keeps extracted document text in SQLite so repeated runs over
// the same PDFs skip OCR.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS extracted_text (
	hash       TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	text       TEXT NOT NULL,
	method     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Entry is one cached extraction.
type Entry struct {
	Hash      string
	Path      string
	Text      string
	Method    string
	CreatedAt time.Time
}

type TextCache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*TextCache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("text cache: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("text cache: open: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the
	// extraction fan-out.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("text cache: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("text cache: schema: %w", err)
	}
	return &TextCache{db: db}, nil
}

func (c *TextCache) Close() error {
	return c.db.Close()
}

// Hash is the cache key for a document's bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached entry for hash, or ok=false when absent.
func (c *TextCache) Get(ctx context.Context, hash string) (Entry, bool, error) {
	var e Entry
	var created int64
	err := c.db.QueryRowContext(ctx,
		`SELECT hash, path, text, method, created_at FROM extracted_text WHERE hash = ?`, hash,
	).Scan(&e.Hash, &e.Path, &e.Text, &e.Method, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("text cache: get: %w", err)
	}
	e.CreatedAt = time.Unix(created, 0)
	return e, true, nil
}

// Put stores or replaces an entry.
func (c *TextCache) Put(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO extracted_text (hash, path, text, method, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET path = excluded.path, text = excluded.text,
		 method = excluded.method, created_at = excluded.created_at`,
		e.Hash, e.Path, e.Text, e.Method, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("text cache: put: %w", err)
	}
	return nil
}
