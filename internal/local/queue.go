package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/store"
)

// OperationQueue is the ordered, durable list of mutations applied locally
// but not yet confirmed by the backend. Replay order is insertion order;
// Enqueue and Resolve are the only mutators and each persists the whole
// queue snapshot.
type OperationQueue struct {
	mu    sync.RWMutex
	ops   []model.Operation
	store store.StateStore
}

// NewOperationQueue creates an operation queue backed by the given state store.
func NewOperationQueue(st store.StateStore) *OperationQueue {
	return &OperationQueue{store: st}
}

// Load restores the persisted queue. A missing key means an empty queue.
func (q *OperationQueue) Load(ctx context.Context) error {
	data, err := q.store.Get(ctx, store.KeySyncQueue)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to load sync queue: %w", err)
	}

	var ops []model.Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return fmt.Errorf("failed to decode sync queue: %w", err)
	}

	q.mu.Lock()
	q.ops = ops
	q.mu.Unlock()
	return nil
}

// Enqueue appends op at the tail and persists.
func (q *OperationQueue) Enqueue(ctx context.Context, op model.Operation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.ops = append(q.ops, op)
	return q.persistLocked(ctx)
}

// All returns the full ordered sequence of pending operations.
func (q *OperationQueue) All() []model.Operation {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]model.Operation, len(q.ops))
	copy(result, q.ops)
	return result
}

// Len returns the number of pending operations.
func (q *OperationQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.ops)
}

// Resolve installs retry in place of the first drained operations and
// persists. Operations enqueued after the drain snapshot was taken keep
// their place behind the retry set, so a mutation that arrives mid-pass is
// never lost.
func (q *OperationQueue) Resolve(ctx context.Context, drained int, retry []model.Operation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if drained > len(q.ops) {
		drained = len(q.ops)
	}
	replacement := make([]model.Operation, 0, len(retry)+len(q.ops)-drained)
	replacement = append(replacement, retry...)
	replacement = append(replacement, q.ops[drained:]...)
	q.ops = replacement
	return q.persistLocked(ctx)
}

func (q *OperationQueue) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(q.ops)
	if err != nil {
		return fmt.Errorf("failed to encode sync queue: %w", err)
	}
	if err := q.store.Set(ctx, store.KeySyncQueue, data); err != nil {
		return fmt.Errorf("failed to persist sync queue: %w", err)
	}
	return nil
}
