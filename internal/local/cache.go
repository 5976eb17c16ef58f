// Package local holds the engine's durable local collections: the product
// cache, the pending operation queue and the log/sale mirrors. Each
// collection keeps an in-memory working copy guarded by a mutex and rewrites
// its whole snapshot to the StateStore on every mutation, so a reader never
// observes a partial write and state survives process restart.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/store"
)

// ProductCache holds the last known-good snapshot of product records so the
// UI stays functional with zero network access. The backend is the source of
// truth; the cache is overwritten wholesale after every authoritative fetch.
type ProductCache struct {
	mu       sync.RWMutex
	products []model.Product
	store    store.StateStore
}

// NewProductCache creates a product cache backed by the given state store.
func NewProductCache(st store.StateStore) *ProductCache {
	return &ProductCache{store: st}
}

// Load restores the last persisted snapshot. A missing key means a fresh
// install and is not an error.
func (c *ProductCache) Load(ctx context.Context) error {
	data, err := c.store.Get(ctx, store.KeyProductCache)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to load product cache: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return fmt.Errorf("failed to decode product cache: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	return nil
}

// All returns a copy of the cached product list.
func (c *ProductCache) All() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]model.Product, len(c.products))
	copy(result, c.products)
	return result
}

// Get returns the cached product with the given id.
func (c *ProductCache) Get(id string) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Len returns the number of cached products.
func (c *ProductCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// ReplaceAll atomically installs a fresh authoritative list and persists it.
func (c *ProductCache) ReplaceAll(ctx context.Context, products []model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	replacement := make([]model.Product, len(products))
	copy(replacement, products)
	c.products = replacement
	return c.persistLocked(ctx)
}

// Upsert applies one product optimistically: updates in place when the id is
// already cached, appends otherwise.
func (c *ProductCache) Upsert(ctx context.Context, p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := false
	for i := range c.products {
		if c.products[i].ID == p.ID {
			c.products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		c.products = append(c.products, p)
	}
	return c.persistLocked(ctx)
}

// Remove drops the product with the given id from the cache.
func (c *ProductCache) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.products[:0]
	for _, p := range c.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.products = kept
	return c.persistLocked(ctx)
}

// persistLocked rewrites the whole snapshot. Caller holds the write lock.
func (c *ProductCache) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(c.products)
	if err != nil {
		return fmt.Errorf("failed to encode product cache: %w", err)
	}
	if err := c.store.Set(ctx, store.KeyProductCache, data); err != nil {
		return fmt.Errorf("failed to persist product cache: %w", err)
	}
	return nil
}
