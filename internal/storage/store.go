// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/haven-tui/internal/model"
)

// StorageKey is the versioned key the root record lives under. Bumping
// the version abandons old records rather than migrating them in place;
// Normalize handles the backfills we do support.
const StorageKey = "haven_app_data_v2"

// =============================================================================
// STORE
// =============================================================================

// Store persists the root record in a SQLite key/value table.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the store at the given database path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS app_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the root record. A missing record yields a fresh
// default-initialized one, never an error; older records get their
// missing collections backfilled.
func (s *Store) Load() (*model.StoredData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save rewrites the whole root record in one statement.
func (s *Store) Save(data *model.StoredData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(data)
}

// Update runs fn against the current record and persists the result.
// The mutex is held across the full load-modify-save cycle so a chat
// append and a background scan can never interleave and lose writes.
func (s *Store) Update(fn func(*model.StoredData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.save(data)
}

// Wipe deletes the root record entirely. The next Load starts fresh.
func (s *Store) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, StorageKey); err != nil {
		return fmt.Errorf("failed to wipe record: %w", err)
	}
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *Store) load() (*model.StoredData, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, StorageKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewStoredData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	data := model.NewStoredData()
	if err := json.Unmarshal([]byte(raw), data); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	data.Normalize()
	return data, nil
}

func (s *Store) save(data *model.StoredData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		StorageKey, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
