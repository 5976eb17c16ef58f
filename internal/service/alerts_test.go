package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/remote/remotetest"
)

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestAlertsLowStock(t *testing.T) {
	svc := newTestService(t, remotetest.NewFakeClient(),
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 5},
		model.Product{ID: "p2", Name: "Feijao", Code: "F1", Quantity: 6},
		model.Product{ID: "p3", Name: "Acucar", Code: "S1", Quantity: 0},
	)

	alerts := svc.Alerts()
	ids := make([]string, 0, len(alerts.LowStock))
	for _, p := range alerts.LowStock {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"p1", "p3"}, ids, "the threshold is inclusive")
}

func TestAlertsExpiringSoon(t *testing.T) {
	svc := newTestService(t, remotetest.NewFakeClient(),
		model.Product{ID: "soon", Name: "Leite", Code: "L1", Quantity: 10, ExpiryDate: day(10)},
		model.Product{ID: "far", Name: "Sal", Code: "S1", Quantity: 10, ExpiryDate: day(60)},
		model.Product{ID: "past", Name: "Iogurte", Code: "I1", Quantity: 10, ExpiryDate: day(-5)},
		model.Product{ID: "undated", Name: "Arame", Code: "W1", Quantity: 10},
	)

	alerts := svc.Alerts()
	if assert.Len(t, alerts.ExpiringSoon, 1) {
		assert.Equal(t, "soon", alerts.ExpiringSoon[0].ID)
	}
}

func TestAlertsStagnant(t *testing.T) {
	svc := newTestService(t, remotetest.NewFakeClient(),
		model.Product{ID: "old", Name: "Vergalhao", Code: "V1", Quantity: 10, EntryDate: day(-120)},
		model.Product{ID: "fresh", Name: "Arroz", Code: "A1", Quantity: 10, EntryDate: day(-10)},
		model.Product{ID: "sold-out", Name: "Feijao", Code: "F1", Quantity: 0, EntryDate: day(-120)},
		model.Product{ID: "undated", Name: "Arame", Code: "W1", Quantity: 10},
	)

	alerts := svc.Alerts()

	ids := make([]string, 0, len(alerts.Stagnant))
	for _, p := range alerts.Stagnant {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"old"}, ids, "stagnant needs both age and stock on hand")
}
