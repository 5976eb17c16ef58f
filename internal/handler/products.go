package handler

import (
	"encoding/json"
	"net/http"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/service"
	"vtz-stock-sync/pkg/apierror"
	"vtz-stock-sync/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	inventory   *service.InventoryService
	defaultUser string
}

// NewProductHandler creates a new product handler.
func NewProductHandler(inventory *service.InventoryService, defaultUser string) *ProductHandler {
	return &ProductHandler{inventory: inventory, defaultUser: defaultUser}
}

// List handles GET /api/v1/products. An optional ?q= filters by substring
// over name, code and location.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query != "" {
		response.OK(w, h.inventory.Search(query))
		return
	}
	response.OK(w, h.inventory.Products())
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.inventory.Product(id)
	if err != nil {
		respondError(w, err)
		return
	}
	response.OK(w, p)
}

// Create handles POST /api/v1/products. When the payload matches an
// existing lot by name, code and location, the duplicate is returned with
// 409 so the UI can offer merging; ?force=true creates a separate lot.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	if r.URL.Query().Get("force") != "true" {
		if dup, found := h.inventory.FindDuplicate(p.Name, p.Code, p.Location); found {
			response.Error(w, apierror.Conflict("a matching lot already exists").WithDetails(
				apierror.FieldError{Field: "existing_id", Message: dup.ID},
			))
			return
		}
	}

	result, err := h.inventory.Create(r.Context(), actingUser(r, h.defaultUser), p)
	if err != nil {
		respondError(w, err)
		return
	}
	response.Created(w, result)
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	p.ID = chi.URLParam(r, "id")

	result, err := h.inventory.Update(r.Context(), actingUser(r, h.defaultUser), p)
	if err != nil {
		respondError(w, err)
		return
	}
	response.OK(w, result)
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.inventory.Delete(r.Context(), actingUser(r, h.defaultUser), id)
	if err != nil {
		respondError(w, err)
		return
	}
	response.OK(w, result)
}

// MergeRequest carries the incoming lot to fold into an existing one.
type MergeRequest struct {
	Product model.Product `json:"product"`
}

// Merge handles POST /api/v1/products/{id}/merge — adds the incoming
// quantity to the existing lot instead of creating a separate one.
func (h *ProductHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	id := chi.URLParam(r, "id")

	result, err := h.inventory.MergeInto(r.Context(), actingUser(r, h.defaultUser), id, req.Product)
	if err != nil {
		respondError(w, err)
		return
	}
	response.OK(w, result)
}

// AdjustRequest carries a quantity delta.
type AdjustRequest struct {
	Delta int `json:"delta"`
}

// Adjust handles POST /api/v1/products/{id}/adjust
func (h *ProductHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	id := chi.URLParam(r, "id")

	result, err := h.inventory.AdjustQuantity(r.Context(), actingUser(r, h.defaultUser), id, req.Delta)
	if err != nil {
		respondError(w, err)
		return
	}
	response.OK(w, result)
}

// Sell handles POST /api/v1/products/{id}/sell
func (h *ProductHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req service.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	req.ProductID = chi.URLParam(r, "id")

	sale, err := h.inventory.Sell(r.Context(), actingUser(r, h.defaultUser), req)
	if err != nil {
		respondError(w, err)
		return
	}
	response.Created(w, sale)
}

// Alerts handles GET /api/v1/alerts
func (h *ProductHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.inventory.Alerts())
}
