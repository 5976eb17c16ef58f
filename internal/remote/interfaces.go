// Package remote is the engine's collaborator for the authoritative
// backend: it performs the actual network calls and classifies every
// failure, so no status-code branching leaks into the sync engine.
package remote

import (
	"context"
	"errors"
	"fmt"

	"vtz-stock-sync/internal/model"
)

// Client defines the calls the sync engine makes against the authoritative
// backend.
type Client interface {
	// ListProducts fetches the full authoritative product list.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// CreateProduct submits a new product and returns it with the
	// backend-assigned id.
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)

	// UpdateProduct replaces the product with the given id.
	UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error)

	// DeleteProduct removes the product with the given id.
	DeleteProduct(ctx context.Context, id string) error

	// Execute dispatches a queued operation by its kind.
	Execute(ctx context.Context, op model.Operation) error

	// RecordSale appends a sale record. Best-effort: failures are logged by
	// the caller, never queued.
	RecordSale(ctx context.Context, s model.Sale) error

	// AppendLog appends an audit log entry. Best-effort like RecordSale.
	AppendLog(ctx context.Context, e model.LogEntry) error

	// Ping probes backend reachability.
	Ping(ctx context.Context) error
}

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	// KindTransient covers network failures, timeouts and server errors.
	// The operation stays queued and is retried on the next pass.
	KindTransient ErrorKind = iota
	// KindPermissionDenied is a definitive rejection: the backend refuses
	// the operation for the caller's role. Retrying cannot help.
	KindPermissionDenied
	// KindAuthExpired means the session credential was rejected. The auth
	// layer owns recovery; the engine retries once a new credential exists.
	KindAuthExpired
)

// Error is a classified backend failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable failure. Unclassified
// errors count as transient: "no response within the timeout" is treated
// identically to a network failure.
func IsTransient(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == KindTransient
	}
	return err != nil
}

// IsPermissionDenied reports whether err is a definitive rejection.
func IsPermissionDenied(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindPermissionDenied
}

// IsAuthExpired reports whether err is a rejected session credential.
func IsAuthExpired(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindAuthExpired
}
