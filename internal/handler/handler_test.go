package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtz-stock-sync/internal/handler"
	"vtz-stock-sync/internal/local"
	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/remote/remotetest"
	"vtz-stock-sync/internal/router"
	"vtz-stock-sync/internal/service"
	"vtz-stock-sync/internal/store"
	syncengine "vtz-stock-sync/internal/sync"
)

type testApp struct {
	mux     http.Handler
	engine  *syncengine.Engine
	backend *remotetest.FakeClient
	svc     *service.InventoryService
}

// newTestApp wires the full HTTP surface over a memory store and a fake
// backend. The engine starts offline; tests that need an online engine seed
// the backend and call refresh.
func newTestApp(t *testing.T, existing ...model.Product) *testApp {
	t.Helper()

	st := store.NewMemoryStateStore()
	cache := local.NewProductCache(st)
	queue := local.NewOperationQueue(st)
	require.NoError(t, cache.ReplaceAll(context.Background(), existing))

	backend := remotetest.NewFakeClient()
	engine := syncengine.NewEngine(syncengine.Config{Cache: cache, Queue: queue, Remote: backend})
	svc := service.NewInventoryService(engine, backend, local.NewLogMirror(st), local.NewSaleMirror(st))
	require.NotNil(t, svc)

	mux := router.New(router.Config{
		Handler:        handler.New("test"),
		ProductHandler: handler.NewProductHandler(svc, "operator"),
		RecordsHandler: handler.NewRecordsHandler(svc),
		SyncHandler:    handler.NewSyncHandler(engine),
		ImportHandler:  handler.NewImportHandler(svc, engine, "operator"),
	})
	return &testApp{mux: mux, engine: engine, backend: backend, svc: svc}
}

func (a *testApp) request(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health handler.HealthResponse
	decodeData(t, rec, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestListAndSearchProducts(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1"},
		model.Product{ID: "p2", Name: "Feijao", Code: "F1"},
	)

	rec := app.request(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []model.Product
	decodeData(t, rec, &products)
	assert.Len(t, products, 2)

	rec = app.request(t, http.MethodGet, "/api/v1/products?q=arroz", "", nil)
	decodeData(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestGetProductNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/products/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductOfflineQueues(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/v1/products",
		`{"name":"Arroz","code":"A1","quantity":3}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result syncengine.ApplyResult
	decodeData(t, rec, &result)
	assert.True(t, result.Queued)
	assert.Equal(t, 1, app.engine.PendingCount())
}

func TestCreateProductValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/v1/products", `{"code":"A1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/v1/products", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDuplicateConflict(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Location: "Prateleira A", Quantity: 10})

	body := `{"name":"Arroz","code":"A1","location":"Prateleira A","quantity":4}`
	rec := app.request(t, http.MethodPost, "/api/v1/products", body, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error struct {
			Details []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Error.Details, 1)
	assert.Equal(t, "existing_id", envelope.Error.Details[0].Field)
	assert.Equal(t, "p1", envelope.Error.Details[0].Message)

	// force=true bypasses the duplicate prompt and creates a separate lot.
	rec = app.request(t, http.MethodPost, "/api/v1/products?force=true", body, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMergeEndpoint(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 10})

	rec := app.request(t, http.MethodPost, "/api/v1/products/p1/merge",
		`{"product":{"quantity":4}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := app.svc.Product("p1")
	require.NoError(t, err)
	assert.Equal(t, 14, p.Quantity)
}

func TestAdjustEndpoint(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 3})

	rec := app.request(t, http.MethodPost, "/api/v1/products/p1/adjust", `{"delta":-10}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := app.svc.Product("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
}

func TestSellEndpoint(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 5})

	rec := app.request(t, http.MethodPost, "/api/v1/products/p1/sell",
		`{"quantity":2,"buyer":"Maria"}`, map[string]string{"X-User": "joao"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sale model.Sale
	decodeData(t, rec, &sale)
	assert.Equal(t, "Maria", sale.Buyer)
	assert.Equal(t, "joao", sale.UserID)

	// Insufficient stock after the decrement.
	rec = app.request(t, http.MethodPost, "/api/v1/products/p1/sell", `{"quantity":10}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeletePermissionDenied(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 5})
	app.backend.SetProducts(model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 5})
	require.NoError(t, app.engine.Refresh(context.Background()))

	app.backend.FailWith(func(op model.Operation) error {
		return remotetest.PermissionDenied("admin only")
	})

	rec := app.request(t, http.MethodDelete, "/api/v1/products/p1", "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "only administrators")

	// The record survives the rejected delete.
	rec = app.request(t, http.MethodGet, "/api/v1/products/p1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(t, model.Product{ID: "p1", Name: "Arroz", Code: "A1"})

	rec := app.request(t, http.MethodPost, "/api/v1/products",
		`{"name":"Feijao","code":"F1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	var status handler.StatusResponse
	decodeData(t, rec, &status)
	assert.Equal(t, "offline", status.State)
	assert.Equal(t, 1, status.Pending)
	assert.Equal(t, 2, status.Products)
}

func TestSyncTrigger(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/v1/products",
		`{"name":"Arroz","code":"A1","quantity":3}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/v1/sync", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report syncengine.Report
	decodeData(t, rec, &report)
	assert.Equal(t, 1, report.Confirmed)
	assert.Equal(t, 0, app.engine.PendingCount())
}

func TestAuditUserFromHeader(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/v1/products",
		`{"name":"Arroz","code":"A1"}`, map[string]string{"X-User": "maria"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/v1/logs", "", nil)
	var logs []model.LogEntry
	decodeData(t, rec, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "maria", logs[0].User)
}

func TestImportPreviewAndCommit(t *testing.T) {
	app := newTestApp(t,
		model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 10})

	csv := "nome,código,quantidade\nArroz,A1,4\nFeijao,F1,2\n"
	rec := app.request(t, http.MethodPost, "/api/v1/import/preview", csv, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []model.ImportCandidate
	decodeData(t, rec, &rows)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Duplicate)
	assert.Equal(t, model.ActionNone, rows[0].Action)
	assert.Equal(t, model.ActionNew, rows[1].Action)

	rows[0].Action = model.ActionSum
	body, err := json.Marshal(map[string]any{"rows": rows})
	require.NoError(t, err)

	// Backend unreachable: rows queue locally and the post-commit refresh is
	// skipped, leaving the optimistic state in place.
	app.backend.SetListErr(remotetest.Transient("unreachable"))
	rec = app.request(t, http.MethodPost, "/api/v1/import/commit", string(body), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Created int `json:"created"`
		Merged  int `json:"merged"`
	}
	decodeData(t, rec, &report)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Merged)

	p, err := app.svc.Product("p1")
	require.NoError(t, err)
	assert.Equal(t, 14, p.Quantity)
}

func TestImportPreviewBadBatch(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/v1/import/preview", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/v1/import/commit", `{"rows":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoints(t *testing.T) {
	app := newTestApp(t, model.Product{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 3})

	rec := app.request(t, http.MethodGet, "/api/v1/export/csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Arroz")

	rec = app.request(t, http.MethodGet, "/api/v1/export/json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products"`)
}

func TestRequestIDPropagated(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
