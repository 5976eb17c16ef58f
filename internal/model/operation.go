package model

import "time"

// OperationKind identifies the mutation a queued operation carries.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

// Operation is one not-yet-confirmed mutation. It is a tagged variant:
// create and update carry a payload snapshot taken at enqueue time, delete
// carries only the target id. Entries are immutable once enqueued; queue
// order is application order.
type Operation struct {
	Kind       OperationKind `json:"kind"`
	ProductID  string        `json:"product_id,omitempty"`
	Product    *Product      `json:"product,omitempty"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// NewCreate builds a create operation for the given product snapshot.
func NewCreate(p Product) Operation {
	return Operation{Kind: OpCreate, ProductID: p.ID, Product: &p, EnqueuedAt: time.Now().UTC()}
}

// NewUpdate builds an update operation for the given product snapshot.
func NewUpdate(p Product) Operation {
	return Operation{Kind: OpUpdate, ProductID: p.ID, Product: &p, EnqueuedAt: time.Now().UTC()}
}

// NewDelete builds a delete operation for the given product id.
func NewDelete(id string) Operation {
	return Operation{Kind: OpDelete, ProductID: id, EnqueuedAt: time.Now().UTC()}
}

// Describe returns a short human-readable form for warnings and logs.
func (o Operation) Describe() string {
	name := o.ProductID
	if o.Product != nil && o.Product.Name != "" {
		name = o.Product.Name
	}
	return string(o.Kind) + " " + name
}
