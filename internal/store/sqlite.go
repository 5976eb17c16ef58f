package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStateStore implements StateStore using SQLite. This is the default
// backend: a single file on the user's machine that survives restarts.
// Thread-safe with WAL mode.
type SQLiteStateStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStateStore creates a new SQLite state store.
// dbPath is the path to the SQLite database file (e.g., "./data/state.db")
func NewSQLiteStateStore(dbPath string) (*SQLiteStateStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createStateTable(db); err != nil {
		return nil, fmt.Errorf("failed to create state table: %w", err)
	}

	log.Printf("[SQLiteStateStore] Initialized with database: %s", dbPath)
	return &SQLiteStateStore{db: db}, nil
}

func createStateTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS client_state (
		state_key TEXT PRIMARY KEY,
		state_value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

// Get retrieves a snapshot by key.
func (s *SQLiteStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT state_value FROM client_state WHERE state_key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get state %q: %w", key, err)
	}
	return []byte(value), nil
}

// Set rewrites the snapshot under key wholesale.
func (s *SQLiteStateStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO client_state (state_key, state_value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(state_key) DO UPDATE SET
			state_value = excluded.state_value,
			updated_at = datetime('now')`

	_, err := s.db.ExecContext(ctx, query, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

// Delete removes a snapshot by key.
func (s *SQLiteStateStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE state_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStateStore implements StateStore
var _ StateStore = (*SQLiteStateStore)(nil)
