package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtz-stock-sync/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(HTTPConfig{
		BaseURL: srv.URL,
		Token:   func() string { return "tok-123" },
	})
}

func TestListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]model.Product{{ID: "p1", Name: "Arroz", Code: "A1", Quantity: 3}})
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestCreateProductStripsTemporaryID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var p model.Product
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Empty(t, p.ID, "the backend assigns the authoritative id")

		p.ID = "srv-1"
		json.NewEncoder(w).Encode(p)
	})

	created, err := client.CreateProduct(context.Background(), model.Product{ID: "temp_abc", Name: "Arroz", Code: "A1"})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", created.ID)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"forbidden is a definitive rejection", http.StatusForbidden, func(t *testing.T, err error) {
			assert.True(t, IsPermissionDenied(err))
			assert.False(t, IsTransient(err))
		}},
		{"unauthorized means the credential expired", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.True(t, IsAuthExpired(err))
			assert.False(t, IsPermissionDenied(err))
		}},
		{"server errors are retryable", http.StatusInternalServerError, func(t *testing.T, err error) {
			assert.True(t, IsTransient(err))
		}},
		{"client errors other than auth are retryable", http.StatusUnprocessableEntity, func(t *testing.T, err error) {
			assert.True(t, IsTransient(err))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			err := client.DeleteProduct(context.Background(), "p1")
			require.Error(t, err)
			tt.check(t, err)

			var rerr *Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.status, rerr.StatusCode)
		})
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})

	_, err := client.ListProducts(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestExecuteDispatch(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(model.Product{ID: "p1"})
	})
	ctx := context.Background()

	p := model.Product{ID: "p1", Name: "Arroz", Code: "A1"}
	require.NoError(t, client.Execute(ctx, model.NewUpdate(p)))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/products/p1", gotPath)

	require.NoError(t, client.Execute(ctx, model.NewDelete("p2")))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/products/p2", gotPath)

	err := client.Execute(ctx, model.Operation{Kind: model.OpUpdate})
	require.Error(t, err, "an update without payload cannot be sent")
}

func TestPingTreatsAuthRejectionAsReachable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.NoError(t, client.Ping(context.Background()),
		"a rejected credential still proves the backend is up")
}

func TestPingFailsWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})

	assert.Error(t, client.Ping(context.Background()))
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, client.DeleteProduct(context.Background(), "p1"))
	assert.Empty(t, gotAuth)
}
