package store

import "context"

// StateStore is durable local key/value storage for the sync engine's
// snapshots: the product cache, the pending operation queue and the log and
// sale mirrors. Each key is rewritten wholesale on every mutation to the
// corresponding collection; there is no incremental persistence. This
// abstraction allows swapping between SQLite (default), MySQL, Redis and
// memory (tests) without changing engine logic.
type StateStore interface {
	// Get retrieves a value by key. Returns ErrNotFound if the key has
	// never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value, replacing any previous content under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Close closes the underlying storage.
	Close() error
}

// Snapshot keys used by the engine's local collections.
const (
	KeyProductCache = "products_cache"
	KeySyncQueue    = "sync_queue"
	KeyLogMirror    = "logs"
	KeySaleMirror   = "sales"
)

// StoreError is a typed store error.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the key was not found in the store.
	ErrNotFound StoreError = "state key not found"
)
