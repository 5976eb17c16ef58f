package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"vtz-stock-sync/internal/model"
)

// TokenSource supplies the current session credential for outbound requests.
// Credential lifecycle (issuing, refresh, re-login) belongs to the auth
// layer, not the engine.
type TokenSource func() string

// HTTPClient is the HTTP+JSON implementation of Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// HTTPConfig holds configuration for the HTTP remote client.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	Token   TokenSource
}

// NewHTTPClient creates an HTTP remote client.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	token := cfg.Token
	if token == nil {
		token = func() string { return "" }
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

// do performs one request and classifies the outcome. A nil error means the
// backend confirmed the call; out, when non-nil, receives the decoded body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransient, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindTransient, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransient, Message: fmt.Sprintf("%s %s failed", method, path), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return &Error{Kind: KindTransient, Message: "failed to decode response", Err: err}
			}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &Error{
			Kind:       KindAuthExpired,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("session credential rejected for %s %s", method, path),
		}
	case resp.StatusCode == http.StatusForbidden:
		return &Error{
			Kind:       KindPermissionDenied,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("permission denied for %s %s", method, path),
		}
	default:
		return &Error{
			Kind:       KindTransient,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s %s returned status %d", method, path, resp.StatusCode),
		}
	}
}

// ListProducts fetches the full authoritative product list.
func (c *HTTPClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct submits a new product. The payload never carries a
// temporary id; the backend assigns the authoritative one.
func (c *HTTPClient) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	p.ID = ""
	var created model.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces the product with the given id.
func (c *HTTPClient) UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	var updated model.Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+p.ID, p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the product with the given id.
func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+id, nil, nil)
}

// Execute dispatches a queued operation by its kind.
func (c *HTTPClient) Execute(ctx context.Context, op model.Operation) error {
	switch op.Kind {
	case model.OpCreate:
		if op.Product == nil {
			return &Error{Kind: KindTransient, Message: "create operation without payload"}
		}
		_, err := c.CreateProduct(ctx, *op.Product)
		return err
	case model.OpUpdate:
		if op.Product == nil {
			return &Error{Kind: KindTransient, Message: "update operation without payload"}
		}
		_, err := c.UpdateProduct(ctx, *op.Product)
		return err
	case model.OpDelete:
		return c.DeleteProduct(ctx, op.ProductID)
	default:
		return &Error{Kind: KindTransient, Message: fmt.Sprintf("unknown operation kind %q", op.Kind)}
	}
}

// RecordSale appends a sale record. Best-effort.
func (c *HTTPClient) RecordSale(ctx context.Context, s model.Sale) error {
	return c.do(ctx, http.MethodPost, "/api/sales", s, nil)
}

// AppendLog appends an audit log entry. Best-effort.
func (c *HTTPClient) AppendLog(ctx context.Context, e model.LogEntry) error {
	return c.do(ctx, http.MethodPost, "/api/logs", e, nil)
}

// Ping probes backend reachability.
func (c *HTTPClient) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil)
	if err != nil && !IsTransient(err) {
		// An auth failure still proves the backend is reachable.
		log.Printf("[RemoteClient] Ping reached backend but was rejected: %v", err)
		return nil
	}
	return err
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
