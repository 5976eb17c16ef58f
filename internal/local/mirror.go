package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/store"
)

// MaxLogEntries caps the local audit mirror, independent of the backend's
// own retention.
const MaxLogEntries = 1000

// LogMirror is the append-only local mirror of audit log entries,
// most-recent-first, capped at MaxLogEntries.
type LogMirror struct {
	mu      sync.RWMutex
	entries []model.LogEntry
	store   store.StateStore
}

// NewLogMirror creates a log mirror backed by the given state store.
func NewLogMirror(st store.StateStore) *LogMirror {
	return &LogMirror{store: st}
}

// Load restores the persisted mirror.
func (m *LogMirror) Load(ctx context.Context) error {
	data, err := m.store.Get(ctx, store.KeyLogMirror)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to load log mirror: %w", err)
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode log mirror: %w", err)
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// Append prepends entry and persists, trimming to the cap.
func (m *LogMirror) Append(ctx context.Context, entry model.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append([]model.LogEntry{entry}, m.entries...)
	if len(m.entries) > MaxLogEntries {
		m.entries = m.entries[:MaxLogEntries]
	}

	data, err := json.Marshal(m.entries)
	if err != nil {
		return fmt.Errorf("failed to encode log mirror: %w", err)
	}
	if err := m.store.Set(ctx, store.KeyLogMirror, data); err != nil {
		return fmt.Errorf("failed to persist log mirror: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first. limit <= 0 returns
// everything.
func (m *LogMirror) Recent(limit int) []model.LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]model.LogEntry, n)
	copy(result, m.entries[:n])
	return result
}

// Len returns the number of mirrored entries.
func (m *LogMirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// SaleMirror is the append-only local mirror of sale records,
// most-recent-first.
type SaleMirror struct {
	mu    sync.RWMutex
	sales []model.Sale
	store store.StateStore
}

// NewSaleMirror creates a sale mirror backed by the given state store.
func NewSaleMirror(st store.StateStore) *SaleMirror {
	return &SaleMirror{store: st}
}

// Load restores the persisted mirror.
func (m *SaleMirror) Load(ctx context.Context) error {
	data, err := m.store.Get(ctx, store.KeySaleMirror)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to load sale mirror: %w", err)
	}

	var sales []model.Sale
	if err := json.Unmarshal(data, &sales); err != nil {
		return fmt.Errorf("failed to decode sale mirror: %w", err)
	}

	m.mu.Lock()
	m.sales = sales
	m.mu.Unlock()
	return nil
}

// Append prepends sale and persists.
func (m *SaleMirror) Append(ctx context.Context, sale model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sales = append([]model.Sale{sale}, m.sales...)

	data, err := json.Marshal(m.sales)
	if err != nil {
		return fmt.Errorf("failed to encode sale mirror: %w", err)
	}
	if err := m.store.Set(ctx, store.KeySaleMirror, data); err != nil {
		return fmt.Errorf("failed to persist sale mirror: %w", err)
	}
	return nil
}

// Recent returns up to limit sales, most recent first. limit <= 0 returns
// everything.
func (m *SaleMirror) Recent(limit int) []model.Sale {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.sales)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]model.Sale, n)
	copy(result, m.sales[:n])
	return result
}
