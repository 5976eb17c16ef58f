package model

import "strings"

// Product represents one inventory lot. The backend is the sole long-term
// owner; local copies live until the next full refresh or explicit
// invalidation. While offline a create carries a locally-generated temporary
// id until the backend assigns the authoritative one.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Location   string `json:"location,omitempty"`
	Weight     string `json:"weight,omitempty"`
	Quantity   int    `json:"quantity"`
	EntryDate  string `json:"entry_date,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Validate checks the fields a product must carry before any mutation is
// applied or queued. Dates are treated as opaque calendar strings.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(p.Code) == "" {
		return ErrCodeRequired
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// SameLot reports whether other describes the same physical lot, matched
// by exact name and code.
func (p *Product) SameLot(name, code string) bool {
	return p.Name == name && p.Code == code
}

// ValidationError is a local validation failure, rejected before any
// mutation is applied or queued.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrNameRequired     ValidationError = "product name is required"
	ErrCodeRequired     ValidationError = "product code is required"
	ErrNegativeQuantity ValidationError = "product quantity cannot be negative"
)
