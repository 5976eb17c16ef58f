package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"vtz-stock-sync/internal/local"
	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/remote"
	"vtz-stock-sync/internal/sync"
	"vtz-stock-sync/pkg/uid"
)

// ServiceError is a typed service error.
type ServiceError string

func (e ServiceError) Error() string { return string(e) }

const (
	// ErrInsufficientStock rejects a sale before anything is applied or
	// queued.
	ErrInsufficientStock ServiceError = "insufficient stock for sale"
	// ErrProductNotFound means the target id is not in the local cache.
	ErrProductNotFound ServiceError = "product not found"
)

// Thresholds for dashboard alerts, carried over from the original rules.
const (
	LowStockThreshold = 5
	ExpiryWarningDays = 30
	StagnantThreshold = 90 * 24 * time.Hour
)

// InventoryService handles inventory business logic on top of the sync
// engine: validation before the gateway, audit logging after it.
type InventoryService struct {
	engine *sync.Engine
	remote remote.Client
	logs   *local.LogMirror
	sales  *local.SaleMirror
}

// NewInventoryService creates a new inventory service.
// Returns nil if engine is nil (required dependency).
func NewInventoryService(engine *sync.Engine, rc remote.Client, logs *local.LogMirror, sales *local.SaleMirror) *InventoryService {
	if engine == nil {
		return nil
	}
	return &InventoryService{engine: engine, remote: rc, logs: logs, sales: sales}
}

// Products returns the cached product list.
func (s *InventoryService) Products() []model.Product {
	return s.engine.Cache().All()
}

// Product returns one cached product.
func (s *InventoryService) Product(id string) (model.Product, error) {
	p, ok := s.engine.Cache().Get(id)
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

// FindDuplicate returns an existing lot matching name, code and location,
// so the caller can offer merging instead of creating a separate lot.
func (s *InventoryService) FindDuplicate(name, code, location string) (model.Product, bool) {
	for _, p := range s.engine.Cache().All() {
		if strings.EqualFold(p.Name, name) && p.Code == code && strings.EqualFold(p.Location, location) {
			return p, true
		}
	}
	return model.Product{}, false
}

// Create validates and submits a new product through the gateway.
func (s *InventoryService) Create(ctx context.Context, user string, p model.Product) (sync.ApplyResult, error) {
	if err := p.Validate(); err != nil {
		return sync.ApplyResult{}, err
	}

	result, err := s.engine.Apply(ctx, model.NewCreate(p))
	if err != nil {
		return result, err
	}
	s.Audit(ctx, user, model.LogCreated, fmt.Sprintf("Created product %q", p.Name), nil, p.Quantity, nil)
	return result, nil
}

// Update validates and submits an edit through the gateway.
func (s *InventoryService) Update(ctx context.Context, user string, p model.Product) (sync.ApplyResult, error) {
	if err := p.Validate(); err != nil {
		return sync.ApplyResult{}, err
	}
	original, ok := s.engine.Cache().Get(p.ID)
	if !ok {
		return sync.ApplyResult{}, ErrProductNotFound
	}

	result, err := s.engine.Apply(ctx, model.NewUpdate(p))
	if err != nil {
		return result, err
	}
	s.Audit(ctx, user, model.LogEdited, fmt.Sprintf("Edited product %q", p.Name),
		original.Quantity, p.Quantity, map[string]any{"product_id": p.ID})
	return result, nil
}

// MergeInto adds quantity to an existing lot, updating dates when the new
// lot carries them. Used when the caller accepts the duplicate prompt.
func (s *InventoryService) MergeInto(ctx context.Context, user string, existingID string, incoming model.Product) (sync.ApplyResult, error) {
	target, ok := s.engine.Cache().Get(existingID)
	if !ok {
		return sync.ApplyResult{}, ErrProductNotFound
	}

	before := target.Quantity
	target.Quantity += incoming.Quantity
	if incoming.ExpiryDate != "" {
		target.ExpiryDate = incoming.ExpiryDate
	}
	if incoming.EntryDate != "" {
		target.EntryDate = incoming.EntryDate
	}

	result, err := s.engine.Apply(ctx, model.NewUpdate(target))
	if err != nil {
		return result, err
	}
	s.Audit(ctx, user, model.LogMerged,
		fmt.Sprintf("Added %d units to %q", incoming.Quantity, target.Name),
		before, target.Quantity, map[string]any{"product_id": target.ID})
	return result, nil
}

// Delete removes a product through the gateway.
func (s *InventoryService) Delete(ctx context.Context, user string, id string) (sync.ApplyResult, error) {
	p, ok := s.engine.Cache().Get(id)
	if !ok {
		return sync.ApplyResult{}, ErrProductNotFound
	}

	result, err := s.engine.Apply(ctx, model.NewDelete(id))
	if err != nil {
		return result, err
	}
	s.Audit(ctx, user, model.LogRemoved, fmt.Sprintf("Removed product %q", p.Name),
		nil, nil, map[string]any{"product_id": id})
	return result, nil
}

// AdjustQuantity applies a quantity delta, clamped at zero.
func (s *InventoryService) AdjustQuantity(ctx context.Context, user string, id string, delta int) (sync.ApplyResult, error) {
	p, ok := s.engine.Cache().Get(id)
	if !ok {
		return sync.ApplyResult{}, ErrProductNotFound
	}

	before := p.Quantity
	after := before + delta
	if after < 0 {
		after = 0
	}
	p.Quantity = after

	result, err := s.engine.Apply(ctx, model.NewUpdate(p))
	if err != nil {
		return result, err
	}
	s.Audit(ctx, user, model.LogQuantity, fmt.Sprintf("Changed quantity of %q", p.Name),
		before, after, map[string]any{"product_id": id})
	return result, nil
}

// SellRequest describes one sale.
type SellRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Buyer     string `json:"buyer"`
	Doc       string `json:"doc"`
}

// Sell decrements stock and records the sale. The stock check happens before
// the gateway is invoked; an insufficient quantity is rejected synchronously
// with no state change.
func (s *InventoryService) Sell(ctx context.Context, user string, req SellRequest) (*model.Sale, error) {
	if req.Quantity <= 0 {
		return nil, model.ErrNegativeQuantity
	}
	p, ok := s.engine.Cache().Get(req.ProductID)
	if !ok {
		return nil, ErrProductNotFound
	}
	if p.Quantity < req.Quantity {
		return nil, ErrInsufficientStock
	}

	before := p.Quantity
	p.Quantity = before - req.Quantity

	if _, err := s.engine.Apply(ctx, model.NewUpdate(p)); err != nil {
		return nil, err
	}

	buyer := strings.TrimSpace(req.Buyer)
	if buyer == "" {
		buyer = model.DefaultBuyer
	}
	sale := model.Sale{
		ID:          uid.New(),
		ProductName: p.Name,
		Quantity:    req.Quantity,
		Buyer:       buyer,
		Doc:         req.Doc,
		Timestamp:   time.Now().UTC(),
		ProductID:   p.ID,
		UserID:      user,
	}

	// Sales are recorded locally regardless; the remote post is best-effort.
	if s.engine.State() == sync.StateOnline {
		if err := s.remote.RecordSale(ctx, sale); err != nil {
			log.Printf("[InventoryService] Remote sale record failed, keeping local copy: %v", err)
		}
	}
	if err := s.sales.Append(ctx, sale); err != nil {
		log.Printf("[InventoryService] Failed to persist sale mirror: %v", err)
	}

	s.Audit(ctx, user, model.LogSold,
		fmt.Sprintf("Sold %d of %q to %s", req.Quantity, p.Name, buyer),
		before, p.Quantity, map[string]any{"sale_id": sale.ID, "product_id": p.ID})
	return &sale, nil
}

// Sales returns recent sales, most recent first.
func (s *InventoryService) Sales(limit int) []model.Sale {
	return s.sales.Recent(limit)
}

// Logs returns recent audit entries, most recent first.
func (s *InventoryService) Logs(limit int) []model.LogEntry {
	return s.logs.Recent(limit)
}

// Audit appends an audit entry: best-effort to the backend when online,
// always to the capped local mirror. It never fails the calling operation.
func (s *InventoryService) Audit(ctx context.Context, user string, kind model.LogKind, message string, before, after any, meta map[string]any) {
	entry := model.LogEntry{
		ID:        uid.New(),
		Timestamp: time.Now().UTC(),
		User:      user,
		Kind:      kind,
		Message:   message,
		Before:    before,
		After:     after,
		Meta:      meta,
	}

	if s.engine.State() == sync.StateOnline {
		if err := s.remote.AppendLog(ctx, entry); err != nil {
			log.Printf("[InventoryService] Remote audit log failed, keeping local copy: %v", err)
		}
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		log.Printf("[InventoryService] Failed to persist log mirror: %v", err)
	}
}

// Search filters the cached products by a case-insensitive substring match
// over name, code and location.
func (s *InventoryService) Search(query string) []model.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Products()
	}

	var results []model.Product
	for _, p := range s.engine.Cache().All() {
		hay := strings.ToLower(p.Name + " " + p.Code + " " + p.Location)
		if strings.Contains(hay, query) {
			results = append(results, p)
		}
	}
	return results
}
