// Package stats persists the monotonic count of videos played in a one-row
// SQLite table.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the durable play counter backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed, ensures the
// schema exists, and seeds the single counter row.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create stats dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}

	if _, err := db.Exec(
		"CREATE TABLE IF NOT EXISTS stats (id INTEGER PRIMARY KEY, videos_played INTEGER)",
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create stats schema: %w", err)
	}
	if _, err := db.Exec(
		"INSERT OR IGNORE INTO stats (id, videos_played) VALUES (1, 0)",
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed stats row: %w", err)
	}

	return &Store{db: db}, nil
}

// Increment adds one to the play counter.
func (s *Store) Increment(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE stats SET videos_played = videos_played + 1 WHERE id = 1")
	return err
}

// Total returns the current play counter value.
func (s *Store) Total(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT videos_played FROM stats WHERE id = 1").Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
