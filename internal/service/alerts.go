package service

import (
	"time"

	"vtz-stock-sync/internal/model"
)

// Alerts groups the dashboard warnings computed from the local cache.
type Alerts struct {
	LowStock     []model.Product `json:"low_stock"`
	ExpiringSoon []model.Product `json:"expiring_soon"`
	Stagnant     []model.Product `json:"stagnant"`
}

// Alerts computes dashboard warnings: low stock (at or under the
// threshold), lots expiring within the warning window, and stocked lots
// that entered more than the stagnant threshold ago. Products without the
// relevant date are skipped, matching the original rules for undated goods
// like wire and rebar.
func (s *InventoryService) Alerts() Alerts {
	now := time.Now()
	var alerts Alerts

	for _, p := range s.engine.Cache().All() {
		if p.Quantity <= LowStockThreshold {
			alerts.LowStock = append(alerts.LowStock, p)
		}

		if p.ExpiryDate != "" {
			if expiry, err := time.Parse("2006-01-02", p.ExpiryDate); err == nil {
				days := expiry.Sub(now).Hours() / 24
				if days >= 0 && days <= ExpiryWarningDays {
					alerts.ExpiringSoon = append(alerts.ExpiringSoon, p)
				}
			}
		}

		if p.EntryDate != "" && p.Quantity > 0 {
			if entry, err := time.Parse("2006-01-02", p.EntryDate); err == nil {
				if now.Sub(entry) > StagnantThreshold {
					alerts.Stagnant = append(alerts.Stagnant, p)
				}
			}
		}
	}
	return alerts
}
