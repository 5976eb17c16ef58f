package handler

import (
	"net/http"
	"time"

	"vtz-stock-sync/internal/sync"
	"vtz-stock-sync/pkg/response"
)

// SyncHandler exposes connectivity state and manual sync triggers.
type SyncHandler struct {
	engine *sync.Engine
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(engine *sync.Engine) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// StatusResponse is the connectivity snapshot shown in the UI header.
type StatusResponse struct {
	State         string `json:"state"`
	Pending       int    `json:"pending"`
	Products      int    `json:"products"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// Status handles GET /api/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		State:         h.engine.State().String(),
		Pending:       h.engine.PendingCount(),
		Products:      h.engine.Cache().Len(),
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.OK(w, resp)
}

// Trigger handles POST /api/v1/sync — a caller-driven forced reconcile.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Reconcile(r.Context())
	if err == sync.ErrSyncInProgress {
		// Coalesced into the pass already running.
		response.JSON(w, http.StatusAccepted, map[string]any{
			"state": h.engine.State().String(),
		})
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	response.OK(w, report)
}
