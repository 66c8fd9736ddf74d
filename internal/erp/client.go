// Package erp is the typed client for the upstream ERP REST API. All domain
// logic (pricing, stock deduction, order state transitions) lives upstream;
// this client only moves payloads and maps errors.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnauthorized signals an expired or invalid bearer token. The session
	// layer reacts by dropping the stored token and forcing re-login.
	ErrUnauthorized = errors.New("erp: unauthorized")
	// ErrNotFound maps upstream 404 responses.
	ErrNotFound = errors.New("erp: not found")
)

// APIError carries the upstream error detail for display.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("erp: request failed with status %d", e.StatusCode)
}

type tokenContextKey struct{}

// ContextWithToken attaches the bearer token used for subsequent requests.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext extracts the bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// Client talks to the upstream API under a base path such as
// http://erp:8000/api/v1. Requests run under a fixed timeout and are never
// retried automatically; retries are user-initiated re-submits.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient constructs a Client. A zero timeout falls back to 15s.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Login exchanges credentials for a bearer token via the form-encoded
// upstream login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("erp: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token Token
	if err := c.do(req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Products lists the product catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	return out, c.get(ctx, "/inventory/products", &out)
}

// Customers lists sales counterparts.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	return out, c.get(ctx, "/sales/customers", &out)
}

// Suppliers lists purchasing counterparts.
func (c *Client) Suppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	return out, c.get(ctx, "/purchases/suppliers", &out)
}

// CashAccounts lists finance accounts.
func (c *Client) CashAccounts(ctx context.Context) ([]CashAccount, error) {
	var out []CashAccount
	return out, c.get(ctx, "/finance/accounts", &out)
}

// SalesOrders lists submitted sales orders.
func (c *Client) SalesOrders(ctx context.Context) ([]SalesOrder, error) {
	var out []SalesOrder
	return out, c.get(ctx, "/sales/orders", &out)
}

// PurchaseOrders lists submitted purchase orders.
func (c *Client) PurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	return out, c.get(ctx, "/purchases/orders", &out)
}

// DashboardSummary fetches the aggregate landing-page figures.
func (c *Client) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var out DashboardSummary
	if err := c.get(ctx, "/dashboard/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SalesChart fetches the sales series. rangeDays <= 0 uses the upstream
// default window.
func (c *Client) SalesChart(ctx context.Context, rangeDays int) (*SalesChart, error) {
	path := "/dashboard/sales-chart"
	if rangeDays > 0 {
		path += "?range=" + strconv.Itoa(rangeDays)
	}
	var out SalesChart
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LowStock lists products under their minimum stock level.
func (c *Client) LowStock(ctx context.Context) ([]LowStockItem, error) {
	var out []LowStockItem
	return out, c.get(ctx, "/dashboard/low-stock", &out)
}

// Transactions lists the finance journal entries.
func (c *Client) Transactions(ctx context.Context) ([]JournalEntry, error) {
	var out []JournalEntry
	return out, c.get(ctx, "/finance/transactions", &out)
}

// CreateProduct registers a new catalog product.
func (c *Client) CreateProduct(ctx context.Context, payload UpsertProduct) (*Product, error) {
	var out Product
	if err := c.post(ctx, "/inventory/products", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a catalog product's master data.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload UpsertProduct) (*Product, error) {
	var out Product
	if err := c.put(ctx, fmt.Sprintf("/inventory/products/%d", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a catalog product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/inventory/products/%d", id))
}

// CreateCustomer registers a new customer.
func (c *Client) CreateCustomer(ctx context.Context, payload UpsertCustomer) (*Customer, error) {
	var out Customer
	if err := c.post(ctx, "/sales/customers", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomer replaces a customer's master data.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, payload UpsertCustomer) (*Customer, error) {
	var out Customer
	if err := c.put(ctx, fmt.Sprintf("/sales/customers/%d", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCustomer removes a customer.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/sales/customers/%d", id))
}

// CreateSupplier registers a new supplier.
func (c *Client) CreateSupplier(ctx context.Context, payload UpsertSupplier) (*Supplier, error) {
	var out Supplier
	if err := c.post(ctx, "/purchases/suppliers", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSupplier replaces a supplier's master data.
func (c *Client) UpdateSupplier(ctx context.Context, id int64, payload UpsertSupplier) (*Supplier, error) {
	var out Supplier
	if err := c.put(ctx, fmt.Sprintf("/purchases/suppliers/%d", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSupplier removes a supplier.
func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/purchases/suppliers/%d", id))
}

// CreateCashAccount registers a new finance account.
func (c *Client) CreateCashAccount(ctx context.Context, payload UpsertCashAccount) (*CashAccount, error) {
	var out CashAccount
	if err := c.post(ctx, "/finance/accounts", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCashAccount replaces a finance account's master data.
func (c *Client) UpdateCashAccount(ctx context.Context, id int64, payload UpsertCashAccount) (*CashAccount, error) {
	var out CashAccount
	if err := c.put(ctx, fmt.Sprintf("/finance/accounts/%d", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTransaction books an income or expense journal entry. The upstream
// adjusts the account balance.
func (c *Client) CreateTransaction(ctx context.Context, payload CreateJournalEntry) (*JournalEntry, error) {
	var out JournalEntry
	if err := c.post(ctx, "/finance/transactions", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSalesOrder submits a composed sales order.
func (c *Client) CreateSalesOrder(ctx context.Context, payload CreateSalesOrder) (*SalesOrder, error) {
	var out SalesOrder
	if err := c.post(ctx, "/sales/orders", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePurchaseOrder submits a composed purchase order.
func (c *Client) CreatePurchaseOrder(ctx context.Context, payload CreatePurchaseOrder) (*PurchaseOrder, error) {
	var out PurchaseOrder
	if err := c.post(ctx, "/purchases/orders", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReceiveOrder posts a goods receipt against an ordered purchase order.
// The upstream applies last-write-wins between concurrent sessions; no
// version field exists in the wire format.
func (c *Client) ReceiveOrder(ctx context.Context, orderID int64, payload ReceiveGoods) (*PurchaseOrder, error) {
	var out PurchaseOrder
	path := fmt.Sprintf("/purchases/orders/%d/receive", orderID)
	if err := c.post(ctx, path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("erp: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("erp: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("erp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("erp: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("erp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("erp: build request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	if token := TokenFromContext(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erp: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erp: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if c.logger != nil {
		c.logger.Warn("upstream error",
			slog.String("path", resp.Request.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("detail", payload.Detail))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		if payload.Detail == "" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrNotFound, payload.Detail)
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: payload.Detail}
}
