package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"bizrecords/internal/model"
)

// SQLiteNamespaceStore is the per-owner key-value area that holds sub-records
// living outside the primary database (tender line items, tender documents).
// Each key maps to a JSON array of records.
type SQLiteNamespaceStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteNamespaceStore(path string) (*SQLiteNamespaceStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating namespace directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening namespace database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS namespaces (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating namespaces table: %w", err)
	}

	return &SQLiteNamespaceStore{db: db, path: path}, nil
}

func (s *SQLiteNamespaceStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteNamespaceStore) Path() string {
	return s.path
}

// Get returns the records stored under key, or an empty slice if the key
// has never been written.
func (s *SQLiteNamespaceStore) Get(ctx context.Context, key string) ([]model.Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM namespaces WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading namespace %q: %w", key, err)
	}

	records := make([]model.Record, 0)
	if raw == "" || raw == jsonNull {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decoding namespace %q: %w", key, err)
	}
	return records, nil
}

func (s *SQLiteNamespaceStore) Set(ctx context.Context, key string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding namespace %q: %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO namespaces (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(data)); err != nil {
		return fmt.Errorf("writing namespace %q: %w", key, err)
	}
	return nil
}

// jsonNull is the JSON representation of null.
const jsonNull = "null"
