package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStateStore implements StateStore using MySQL. Used when several
// terminals at the same site want to share one local state database while
// the authoritative backend stays remote.
type MySQLStateStore struct {
	db *sql.DB
}

// NewMySQLStateStore creates a MySQL-backed state store from a DSN.
func NewMySQLStateStore(dsn string) (*MySQLStateStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS client_state (
		state_key VARCHAR(191) PRIMARY KEY,
		state_value MEDIUMTEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state table: %w", err)
	}

	log.Println("[MySQLStateStore] Initialized")
	return &MySQLStateStore{db: db}, nil
}

// Get retrieves a snapshot by key.
func (s *MySQLStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_value FROM client_state WHERE state_key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get state %q: %w", key, err)
	}
	return []byte(value), nil
}

// Set rewrites the snapshot under key wholesale.
func (s *MySQLStateStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO client_state (state_key, state_value, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE state_value = VALUES(state_value), updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

// Delete removes a snapshot by key.
func (s *MySQLStateStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE state_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *MySQLStateStore) Close() error {
	return s.db.Close()
}

var _ StateStore = (*MySQLStateStore)(nil)
