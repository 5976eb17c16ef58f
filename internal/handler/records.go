package handler

import (
	"net/http"
	"strconv"

	"vtz-stock-sync/internal/service"
	"vtz-stock-sync/pkg/response"
)

// RecordsHandler serves the local sale and audit log mirrors.
type RecordsHandler struct {
	inventory *service.InventoryService
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(inventory *service.InventoryService) *RecordsHandler {
	return &RecordsHandler{inventory: inventory}
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}

// Sales handles GET /api/v1/sales
func (h *RecordsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.inventory.Sales(limitParam(r, 100)))
}

// Logs handles GET /api/v1/logs
func (h *RecordsHandler) Logs(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.inventory.Logs(limitParam(r, 200)))
}

// ExportCSV handles GET /api/v1/export/csv
func (h *RecordsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vtz_products.csv"`)
	if err := h.inventory.WriteCSV(w); err != nil {
		respondError(w, err)
	}
}

// ExportJSON handles GET /api/v1/export/json
func (h *RecordsHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="vtz_backup.json"`)
	if err := h.inventory.WriteJSON(w); err != nil {
		respondError(w, err)
	}
}
