// Package templatecache persists fetched templates in SQLite so later runs
// skip the network.
package templatecache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
    url TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Entry is a cached template row.
type Entry struct {
	URL       string
	Size      int
	FetchedAt time.Time
}

// Store is a SQLite-backed modalsvc.TemplateCache. Storage errors are logged
// and reported as misses; the cache never fails a modal.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// Enable WAL mode so a running TUI and a warm command can share the file
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{conn: conn, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get implements modalsvc.TemplateCache.
func (s *Store) Get(key string) (string, bool) {
	var body string
	err := s.conn.QueryRow(`SELECT body FROM templates WHERE url = ?`, key).Scan(&body)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.logger.Warn("template cache read", "url", key, "err", err)
		return "", false
	}
	return body, true
}

// Put implements modalsvc.TemplateCache. The last write for a key wins.
func (s *Store) Put(key, value string) {
	_, err := s.conn.Exec(`
		INSERT INTO templates (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		key, value, time.Now().UTC())
	if err != nil {
		s.logger.Warn("template cache write", "url", key, "err", err)
	}
}

// List returns every cached entry ordered by URL.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.conn.Query(`SELECT url, length(body), fetched_at FROM templates ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.URL, &e.Size, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
