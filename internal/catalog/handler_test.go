package catalog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-front/internal/erp"
)

type handlerFixture struct {
	router       http.Handler
	productLists int32
	accountLists int32
	journalLists int32
	deletedPath  string
}

// newHandlerFixture wires the handler against a fake upstream that counts
// list fetches, so invalidation shows up as a second upstream hit.
func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /inventory/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.productLists, 1)
		_ = json.NewEncoder(w).Encode([]erp.Product{{ID: 1, SKU: "SKU-001", Name: "Widget"}})
	})
	mux.HandleFunc("POST /inventory/products", func(w http.ResponseWriter, r *http.Request) {
		var body erp.UpsertProduct
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(erp.Product{ID: 2, SKU: body.SKU, Name: body.Name})
	})
	mux.HandleFunc("DELETE /sales/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.deletedPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /finance/accounts", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.accountLists, 1)
		_ = json.NewEncoder(w).Encode([]erp.CashAccount{{ID: 1, Name: "Till", Type: "cash", Balance: 100}})
	})
	mux.HandleFunc("GET /finance/transactions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.journalLists, 1)
		_ = json.NewEncoder(w).Encode([]erp.JournalEntry{})
	})
	mux.HandleFunc("POST /finance/transactions", func(w http.ResponseWriter, r *http.Request) {
		var body erp.CreateJournalEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(erp.JournalEntry{ID: 9, Description: body.Description, Amount: body.Amount})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.DiscardHandler)
	client := erp.NewClient(srv.URL, time.Second, logger)
	cache := NewCache(nil, time.Minute)
	RegisterLoaders(cache, client)

	r := chi.NewRouter()
	NewHandler(logger, cache, client).MountRoutes(r)
	f.router = r
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(erp.ContextWithToken(req.Context(), "tok"))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateProductInvalidatesList(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.productLists), "warm list must not refetch")

	rec = f.do(t, http.MethodPost, "/products", erp.UpsertProduct{SKU: "SKU-002", Name: "Gadget"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created erp.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "SKU-002", created.SKU)

	rec = f.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.productLists), "create must mark the list stale")
}

func TestCreateProductValidatesBeforeProxying(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/products", erp.UpsertProduct{Name: "No SKU"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation Failed")
}

func TestDeleteCustomerProxiesByID(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodDelete, "/customers/5", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/sales/customers/5", f.deletedPath)
}

func TestMutationRejectsBadID(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPut, "/products/abc", erp.UpsertProduct{SKU: "S", Name: "N"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")
}

func TestCreateTransactionRefreshesAccounts(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/transactions", erp.CreateJournalEntry{
		Description:   "till top-up",
		Type:          "income",
		Amount:        50,
		CashAccountID: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.accountLists), "booking an entry moves a balance")
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.journalLists))
}

func TestCreateTransactionRejectsZeroAmount(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/transactions", erp.CreateJournalEntry{
		Description:   "nothing",
		Type:          "expense",
		CashAccountID: 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.journalLists), "validation failures stay off the network")
}
