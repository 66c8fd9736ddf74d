package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-front/internal/auth"
	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/platform/httpx"
)

// Handler serves the cached reference lists the table views render, plus
// the master-data mutations those views edit with. Writes pass through to
// the upstream and invalidate the matching cache key so the next read
// reflects the change.
type Handler struct {
	logger   *slog.Logger
	cache    *Cache
	client   *erp.Client
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, cache *Cache, client *erp.Client) *Handler {
	return &Handler{
		logger:   logger,
		cache:    cache,
		client:   client,
		validate: validator.New(),
	}
}

// MountRoutes registers the list and master-data endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/customers", h.listCustomers)
	r.Post("/customers", h.createCustomer)
	r.Put("/customers/{id}", h.updateCustomer)
	r.Delete("/customers/{id}", h.deleteCustomer)

	r.Get("/suppliers", h.listSuppliers)
	r.Post("/suppliers", h.createSupplier)
	r.Put("/suppliers/{id}", h.updateSupplier)
	r.Delete("/suppliers/{id}", h.deleteSupplier)

	r.Get("/accounts", h.listAccounts)
	r.Post("/accounts", h.createAccount)
	r.Put("/accounts/{id}", h.updateAccount)

	r.Get("/transactions", h.listTransactions)
	r.Post("/transactions", h.createTransaction)

	r.Get("/sales-orders", h.listSalesOrders)
	r.Get("/purchase-orders", h.listPurchaseOrders)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var out []erp.Product
	if err := h.cache.Fetch(r.Context(), KeyProducts, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req erp.UpsertProduct
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.CreateProduct(r.Context(), req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyProducts)
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req erp.UpsertProduct
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.UpdateProduct(r.Context(), id, req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyProducts)
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.client.DeleteProduct(r.Context(), id); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyProducts)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	var out []erp.Customer
	if err := h.cache.Fetch(r.Context(), KeyCustomers, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req erp.UpsertCustomer
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.CreateCustomer(r.Context(), req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyCustomers)
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req erp.UpsertCustomer
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyCustomers)
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.client.DeleteCustomer(r.Context(), id); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyCustomers)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	var out []erp.Supplier
	if err := h.cache.Fetch(r.Context(), KeySuppliers, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req erp.UpsertSupplier
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.CreateSupplier(r.Context(), req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeySuppliers)
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req erp.UpsertSupplier
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.UpdateSupplier(r.Context(), id, req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeySuppliers)
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.client.DeleteSupplier(r.Context(), id); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeySuppliers)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	var out []erp.CashAccount
	if err := h.cache.Fetch(r.Context(), KeyCashAccounts, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req erp.UpsertCashAccount
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.CreateCashAccount(r.Context(), req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyCashAccounts)
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req erp.UpsertCashAccount
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.UpdateCashAccount(r.Context(), id, req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyCashAccounts)
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	var out []erp.JournalEntry
	if err := h.cache.Fetch(r.Context(), KeyTransactions, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// createTransaction books a journal entry. The upstream moves the account
// balance, so both the journal and the accounts list go stale.
func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req erp.CreateJournalEntry
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.client.CreateTransaction(r.Context(), req)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.cache.Invalidate(KeyTransactions, KeyCashAccounts)
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) listSalesOrders(w http.ResponseWriter, r *http.Request) {
	var out []erp.SalesOrder
	if err := h.cache.Fetch(r.Context(), KeySalesOrders, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	var out []erp.PurchaseOrder
	if err := h.cache.Fetch(r.Context(), KeyPurchaseOrders, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
