// Package remotetest provides an in-memory fake of the remote backend for
// engine, importer and handler tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/remote"
)

// FakeClient is an in-memory remote.Client. It keeps its own authoritative
// product list, records every mutation in arrival order, and can be scripted
// to fail per operation.
type FakeClient struct {
	mu sync.Mutex

	products []model.Product
	nextID   int

	listErr error
	listFn  func() ([]model.Product, error)
	pingErr error
	failFor func(op model.Operation) error

	ops   []model.Operation
	sales []model.Sale
	logs  []model.LogEntry
}

// NewFakeClient creates a fake backend pre-seeded with products.
func NewFakeClient(products ...model.Product) *FakeClient {
	return &FakeClient{products: products, nextID: 1}
}

// SetProducts replaces the authoritative list.
func (f *FakeClient) SetProducts(products ...model.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
}

// SetListErr makes ListProducts fail with err.
func (f *FakeClient) SetListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// ListWith replaces ListProducts entirely. The hook runs without the fake's
// lock held, so it may block or observe concurrency.
func (f *FakeClient) ListWith(fn func() ([]model.Product, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFn = fn
}

// SetPingErr makes Ping fail with err.
func (f *FakeClient) SetPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

// FailWith scripts per-operation failures. Returning nil confirms the
// operation. The hook runs without the fake's lock held, so it may block to
// gate a drain while other calls proceed.
func (f *FakeClient) FailWith(fn func(op model.Operation) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFor = fn
}

// Ops returns every mutation the backend observed, in arrival order.
func (f *FakeClient) Ops() []model.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]model.Operation, len(f.ops))
	copy(result, f.ops)
	return result
}

// Sales returns every recorded sale.
func (f *FakeClient) Sales() []model.Sale {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]model.Sale, len(f.sales))
	copy(result, f.sales)
	return result
}

// Logs returns every appended log entry.
func (f *FakeClient) Logs() []model.LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]model.LogEntry, len(f.logs))
	copy(result, f.logs)
	return result
}

// check runs the scripted failure hook, if any, outside the lock.
func (f *FakeClient) check(op model.Operation) error {
	f.mu.Lock()
	fn := f.failFor
	f.mu.Unlock()

	if fn != nil {
		return fn(op)
	}
	return nil
}

// ListProducts returns the authoritative list.
func (f *FakeClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	fn := f.listFn
	listErr := f.listErr
	result := make([]model.Product, len(f.products))
	copy(result, f.products)
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}
	if listErr != nil {
		return nil, listErr
	}
	return result, nil
}

// CreateProduct assigns a server id and appends to the authoritative list.
func (f *FakeClient) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	op := model.Operation{Kind: model.OpCreate, Product: &p}
	if err := f.check(op); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p.ID = fmt.Sprintf("srv-%d", f.nextID)
	f.nextID++
	f.products = append(f.products, p)
	op.ProductID = p.ID
	f.ops = append(f.ops, op)
	return &p, nil
}

// UpdateProduct replaces a product in the authoritative list.
func (f *FakeClient) UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	op := model.Operation{Kind: model.OpUpdate, ProductID: p.ID, Product: &p}
	if err := f.check(op); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	replaced := false
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		f.products = append(f.products, p)
	}
	f.ops = append(f.ops, op)
	return &p, nil
}

// DeleteProduct removes a product from the authoritative list.
func (f *FakeClient) DeleteProduct(ctx context.Context, id string) error {
	op := model.Operation{Kind: model.OpDelete, ProductID: id}
	if err := f.check(op); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.products = kept
	f.ops = append(f.ops, op)
	return nil
}

// Execute dispatches a queued operation by its kind.
func (f *FakeClient) Execute(ctx context.Context, op model.Operation) error {
	switch op.Kind {
	case model.OpCreate:
		_, err := f.CreateProduct(ctx, *op.Product)
		return err
	case model.OpUpdate:
		_, err := f.UpdateProduct(ctx, *op.Product)
		return err
	case model.OpDelete:
		return f.DeleteProduct(ctx, op.ProductID)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// RecordSale records a sale.
func (f *FakeClient) RecordSale(ctx context.Context, s model.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales = append(f.sales, s)
	return nil
}

// AppendLog appends a log entry.
func (f *FakeClient) AppendLog(ctx context.Context, e model.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, e)
	return nil
}

// Ping probes reachability.
func (f *FakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

var _ remote.Client = (*FakeClient)(nil)

// Transient builds a retryable backend error for scripting.
func Transient(msg string) error {
	return &remote.Error{Kind: remote.KindTransient, StatusCode: 500, Message: msg}
}

// PermissionDenied builds a definitive rejection for scripting.
func PermissionDenied(msg string) error {
	return &remote.Error{Kind: remote.KindPermissionDenied, StatusCode: 403, Message: msg}
}
