// Package sqlite provides a SQLite-backed kv.Store: lightweight, serverless,
// file-based storage with the same contract as the Redis backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/memorygo/kv"
)

// SqliteStore implements kv.Store using SQLite.
//
// Values live in a plain key/value table; lists live in a second table with
// a descending position column so that newest-first ordering matches the
// Redis backend's LPUSH semantics.
type SqliteStore struct {
	db *sql.DB
}

var _ kv.Store = (*SqliteStore)(nil)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path string // Database file path, or ":memory:"
}

// NewSqliteStore creates a new SQLite-backed store.
func NewSqliteStore(opts SqliteOptions) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SqliteStore) initSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_values (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS kv_lists (
			key TEXT NOT NULL,
			pos INTEGER NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, pos)
		);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// Set stores a value under a key.
func (s *SqliteStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_values (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_values WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

// Delete removes a key and any list stored under it.
func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_values WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_lists WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete list %s: %w", key, err)
	}
	return nil
}

// ListPush prepends a value to the list stored under key.
func (s *SqliteStore) ListPush(ctx context.Context, key string, value string) error {
	// Positions decrease on push, so ORDER BY pos ASC reads newest first.
	query := `
		INSERT INTO kv_lists (key, pos, value)
		VALUES (?, (SELECT COALESCE(MIN(pos), 1) - 1 FROM kv_lists WHERE key = ?), ?)
	`
	if _, err := s.db.ExecContext(ctx, query, key, key, value); err != nil {
		return fmt.Errorf("failed to push to list %s: %w", key, err)
	}
	return nil
}

// ListRange returns list elements between start and stop inclusive.
func (s *SqliteStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_lists WHERE key = ?", key).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count list %s: %w", key, err)
	}

	lo, hi, ok := kv.NormalizeRange(count, start, stop)
	if !ok {
		return []string{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT value FROM kv_lists WHERE key = ? ORDER BY pos ASC LIMIT ? OFFSET ?",
		key, hi-lo, lo)
	if err != nil {
		return nil, fmt.Errorf("failed to range list %s: %w", key, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan list row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list rows: %w", err)
	}
	return values, nil
}
