package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, nil)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Product{})
	})

	ctx := ContextWithToken(context.Background(), "tok123")
	_, err := client.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Product{})
	})

	_, err := client.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestLoginSendsForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))
		_ = json.NewEncoder(w).Encode(Token{AccessToken: "tok", TokenType: "bearer"})
	})

	token, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	})

	_, err := client.Products(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Insufficient stock"})
	})

	_, err := client.CreateSalesOrder(context.Background(), CreateSalesOrder{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Insufficient stock", apiErr.Error())
}

func TestAPIErrorGenericFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Products(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "status 500")
}

func TestReceiveOrderPath(t *testing.T) {
	var gotPath string
	var gotBody ReceiveGoods
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(PurchaseOrder{ID: 9, Status: PurchaseStatusReceived})
	})

	payload := ReceiveGoods{Notes: "dock 3", Items: []ReceiptItem{{ProductID: 4, QtyReceived: 2}}}
	order, err := client.ReceiveOrder(context.Background(), 9, payload)
	require.NoError(t, err)
	assert.Equal(t, "/purchases/orders/9/receive", gotPath)
	assert.Equal(t, payload, gotBody)
	assert.Equal(t, PurchaseStatusReceived, order.Status)
}
