package model

import "time"

// DefaultBuyer is used when a sale is recorded without a named buyer.
const DefaultBuyer = "Consumidor Final"

// Sale captures one sale at the moment it happened: a snapshot of the
// product name plus quantity, buyer and optional document reference. It is
// created atomically with the quantity decrement on the product.
type Sale struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product"`
	Quantity    int       `json:"quantity"`
	Buyer       string    `json:"buyer"`
	Doc         string    `json:"doc,omitempty"`
	Timestamp   time.Time `json:"ts"`
	ProductID   string    `json:"product_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
}
