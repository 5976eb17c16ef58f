package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"vtz-stock-sync/internal/importer"
	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/service"
	"vtz-stock-sync/internal/sync"
	"vtz-stock-sync/pkg/apierror"
	"vtz-stock-sync/pkg/response"
)

// ImportHandler handles bulk import preview and commit.
type ImportHandler struct {
	inventory   *service.InventoryService
	engine      *sync.Engine
	defaultUser string
}

// NewImportHandler creates a new import handler.
func NewImportHandler(inventory *service.InventoryService, engine *sync.Engine, defaultUser string) *ImportHandler {
	return &ImportHandler{inventory: inventory, engine: engine, defaultUser: defaultUser}
}

// Preview handles POST /api/v1/import/preview. The body is the raw CSV;
// the response is the batch annotated with duplicate flags and default
// actions, awaiting the user's per-row decisions.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	candidates, err := importer.ParseCSV(r.Body)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	resolver := importer.NewResolver(candidates, h.inventory.Products(), h.engine, h.auditFunc(r))
	response.OK(w, resolver.Rows())
}

// CommitRequest carries the decided batch back for execution.
type CommitRequest struct {
	Rows []model.ImportCandidate `json:"rows"`
}

// Commit handles POST /api/v1/import/commit. Rows are re-annotated against
// the current cache, executed independently, then the cache is refreshed
// from the authoritative list.
func (h *ImportHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if len(req.Rows) == 0 {
		response.Error(w, apierror.BadRequest("import batch is empty"))
		return
	}

	resolver := importer.NewResolver(req.Rows, h.inventory.Products(), h.engine, h.auditFunc(r))
	report := resolver.Commit(r.Context())

	// Batch done: force a full authoritative refresh so dependent views
	// re-render from confirmed state.
	if err := h.engine.Refresh(r.Context()); err != nil {
		log.Printf("[ImportHandler] Post-import refresh failed: %v", err)
	}

	response.OK(w, report)
}

func (h *ImportHandler) auditFunc(r *http.Request) importer.AuditFunc {
	user := actingUser(r, h.defaultUser)
	return func(ctx context.Context, kind model.LogKind, message string, before, after any) {
		h.inventory.Audit(ctx, user, kind, message, before, after, nil)
	}
}
