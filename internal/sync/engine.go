package sync

import (
	"context"
	"fmt"
	"log"
	stdsync "sync"
	"time"

	"vtz-stock-sync/internal/local"
	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/remote"
	"vtz-stock-sync/pkg/uid"
)

// EngineError is a typed engine error.
type EngineError string

func (e EngineError) Error() string { return string(e) }

const (
	// ErrSyncInProgress means an overlapping reconcile trigger was coalesced
	// into the pass already running.
	ErrSyncInProgress EngineError = "a sync pass is already in progress"
)

// ApplyResult tells the caller how a mutation landed: confirmed by the
// backend, or applied locally and queued for later reconciliation. Silent
// loss is never an outcome.
type ApplyResult struct {
	// Queued is true when the mutation was applied to the local cache and
	// enqueued instead of being confirmed by the backend.
	Queued bool `json:"queued"`
	// Product is the resulting record: the backend's confirmed version when
	// available, otherwise the optimistic local one.
	Product *model.Product `json:"product,omitempty"`
}

// Report summarizes one reconcile pass.
type Report struct {
	Attempted int      `json:"attempted"`
	Confirmed int      `json:"confirmed"`
	Rejected  int      `json:"rejected"`
	Remaining int      `json:"remaining"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Engine owns the local cache and the pending operation queue, and is the
// single path every mutation takes: optimistic apply with offline fallback
// on the way in, ordered drain against the backend on the way out.
type Engine struct {
	cache   *local.ProductCache
	queue   *local.OperationQueue
	remote  remote.Client
	monitor *Monitor

	// Single-flight guard: overlapping reconcile triggers (connectivity
	// recovery, manual refresh, post-failure retry) coalesce into the pass
	// already running, so no queue item is ever replayed twice.
	reconcileMu stdsync.Mutex

	// refreshMu serializes fetch-and-install pairs so a stale authoritative
	// list can never overwrite a fresher one already installed.
	refreshMu stdsync.Mutex
}

// Config holds engine construction parameters.
type Config struct {
	Cache         *local.ProductCache
	Queue         *local.OperationQueue
	Remote        remote.Client
	ProbeInterval time.Duration
}

// NewEngine creates a sync engine and its connectivity monitor. Start must
// be called before the monitor begins probing.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cache:  cfg.Cache,
		queue:  cfg.Queue,
		remote: cfg.Remote,
	}
	e.monitor = NewMonitor(cfg.Remote.Ping, cfg.ProbeInterval, func(ctx context.Context) {
		if _, err := e.Reconcile(ctx); err != nil && err != ErrSyncInProgress {
			log.Printf("[SyncEngine] Recovery sync failed: %v", err)
		}
	})
	return e
}

// Start begins connectivity monitoring and, when the backend is reachable,
// runs an initial reconcile so state queued before the restart drains.
func (e *Engine) Start(ctx context.Context) {
	e.monitor.Start(ctx)
	if e.monitor.State() == StateOnline {
		if _, err := e.Reconcile(ctx); err != nil && err != ErrSyncInProgress {
			log.Printf("[SyncEngine] Initial sync failed: %v", err)
		}
	}
}

// Stop stops the connectivity monitor.
func (e *Engine) Stop() {
	e.monitor.Stop()
}

// State returns the current connectivity state.
func (e *Engine) State() State {
	return e.monitor.State()
}

// PendingCount returns the number of queued operations.
func (e *Engine) PendingCount() int {
	return e.queue.Len()
}

// Cache exposes the product cache for read paths.
func (e *Engine) Cache() *local.ProductCache {
	return e.cache
}

// Apply runs one mutation through the optimistic-apply/fallback gateway.
// The caller always observes either a confirmed success or a locally-applied
// queued state. Validation happens before this gateway is invoked.
func (e *Engine) Apply(ctx context.Context, op model.Operation) (ApplyResult, error) {
	// Offline creates get a temporary id so the record is addressable in
	// the cache until the backend assigns the authoritative one.
	if op.Kind == model.OpCreate && op.Product != nil && op.Product.ID == "" {
		op.Product.ID = uid.NewTemp()
		op.ProductID = op.Product.ID
	}

	if e.monitor.State() == StateOffline {
		return e.applyLocally(ctx, op)
	}

	err := e.execute(ctx, &op)
	if err == nil {
		// The backend is the source of truth for quantities: discard
		// optimistic state in favor of the confirmed list.
		if rerr := e.refresh(ctx); rerr != nil {
			log.Printf("[SyncEngine] Post-mutation refresh failed, keeping cache: %v", rerr)
			e.monitor.ReportOffline()
		}
		result := ApplyResult{}
		if op.ProductID != "" {
			if p, ok := e.cache.Get(op.ProductID); ok {
				result.Product = &p
			}
		}
		return result, nil
	}

	if remote.IsPermissionDenied(err) {
		// Definitive rejection: retrying cannot help, nothing is applied or
		// queued, connectivity state is untouched.
		return ApplyResult{}, err
	}

	log.Printf("[SyncEngine] %s failed online, queueing for retry: %v", op.Describe(), err)
	e.monitor.ReportOffline()
	return e.applyLocally(ctx, op)
}

// applyLocally applies op to the cache and appends it to the queue.
func (e *Engine) applyLocally(ctx context.Context, op model.Operation) (ApplyResult, error) {
	switch op.Kind {
	case model.OpCreate, model.OpUpdate:
		if op.Product == nil {
			return ApplyResult{}, fmt.Errorf("%s operation without payload", op.Kind)
		}
		if err := e.cache.Upsert(ctx, *op.Product); err != nil {
			return ApplyResult{}, err
		}
	case model.OpDelete:
		if err := e.cache.Remove(ctx, op.ProductID); err != nil {
			return ApplyResult{}, err
		}
	}

	if err := e.queue.Enqueue(ctx, op); err != nil {
		return ApplyResult{}, fmt.Errorf("failed to queue %s: %w", op.Describe(), err)
	}
	return ApplyResult{Queued: true, Product: op.Product}, nil
}

// execute performs op against the backend. For creates the payload goes out
// without its temporary id, and op.ProductID is rewritten to the
// backend-assigned one on success.
func (e *Engine) execute(ctx context.Context, op *model.Operation) error {
	if op.Kind == model.OpCreate && op.Product != nil {
		created, err := e.remote.CreateProduct(ctx, *op.Product)
		if err != nil {
			return err
		}
		op.ProductID = created.ID
		return nil
	}
	return e.remote.Execute(ctx, *op)
}

// Reconcile drains the pending queue in insertion order, keeps transient
// failures for the next pass, drops definitive rejections with a warning,
// then overwrites the cache from the authoritative list. Triggered by
// connectivity recovery, by a caller-driven forced refresh, and by mutation
// attempts that discover they are offline.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	if !e.reconcileMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.reconcileMu.Unlock()

	ops := e.queue.All()
	if len(ops) == 0 {
		if err := e.refresh(ctx); err != nil {
			e.monitor.ReportOffline()
			return nil, fmt.Errorf("authoritative fetch failed: %w", err)
		}
		e.monitor.set(StateOnline)
		return &Report{}, nil
	}

	e.monitor.set(StateSyncing)
	log.Printf("[SyncEngine] Draining %d pending operations", len(ops))

	report := &Report{Attempted: len(ops)}
	var retry []model.Operation

	for i := range ops {
		op := ops[i]
		err := e.execute(ctx, &op)
		switch {
		case err == nil:
			report.Confirmed++
		case remote.IsPermissionDenied(err):
			report.Rejected++
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("permission denied: %s was not applied", op.Describe()))
			log.Printf("[SyncEngine] Dropping rejected operation %s: %v", op.Describe(), err)
		default:
			retry = append(retry, op)
		}
	}

	// Resolve only the drained prefix: mutations enqueued while the pass was
	// running keep their place and drain on the next trigger.
	if err := e.queue.Resolve(ctx, len(ops), retry); err != nil {
		e.monitor.ReportOffline()
		return report, fmt.Errorf("failed to persist retry set: %w", err)
	}
	report.Remaining = e.queue.Len()

	// The backend is the single source of truth once any confirmation
	// traffic has occurred; optimistic local state is discarded.
	if err := e.refresh(ctx); err != nil {
		report.Warnings = append(report.Warnings, "authoritative refresh failed, serving cached data")
		log.Printf("[SyncEngine] Post-drain refresh failed, keeping cache: %v", err)
		e.monitor.ReportOffline()
		return report, nil
	}

	e.monitor.set(StateOnline)
	log.Printf("[SyncEngine] Sync pass done - confirmed: %d, rejected: %d, pending: %d",
		report.Confirmed, report.Rejected, report.Remaining)
	return report, nil
}

// Refresh forces an authoritative fetch outside a drain pass.
func (e *Engine) Refresh(ctx context.Context) error {
	if err := e.refresh(ctx); err != nil {
		e.monitor.ReportOffline()
		return err
	}
	if e.monitor.State() != StateSyncing {
		e.monitor.set(StateOnline)
	}
	return nil
}

// refresh replaces the cache with the freshly fetched authoritative list.
// On failure the existing cache contents are left untouched. The fetch and
// the install happen under one lock, so every installed list is at least as
// fresh as the one it replaces.
func (e *Engine) refresh(ctx context.Context) error {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	products, err := e.remote.ListProducts(ctx)
	if err != nil {
		return err
	}
	return e.cache.ReplaceAll(ctx, products)
}
