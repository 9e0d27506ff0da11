package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// KVStore is a string blob store keyed by name.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	Close() error
}

// SQLiteStore implements KVStore on a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ KVStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath. Use ":memory:" for
// a throwaway store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions (only works once the file exists)
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("dbPath", dbPath).Msg("could not restrict database permissions")
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

// Get retrieves a value by key.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key %q: %w", key, err)
	}

	return value, true, nil
}

// Set stores a value, replacing the previous one in a single statement.
func (s *SQLiteStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}

	return nil
}

// Remove deletes a key.
func (s *SQLiteStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
