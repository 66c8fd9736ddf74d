// Package compose exposes the order-composition endpoints the browser app
// drives: one sales and one purchase draft per session, plus the goods
// receipt flow for ordered purchase orders.
package compose

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-front/internal/auth"
	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/draft"
	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/platform/httpx"
	"github.com/meridian-erp/meridian-front/internal/session"
	"github.com/meridian-erp/meridian-front/internal/syncer"
)

// Handler owns the composition routes.
type Handler struct {
	logger   *slog.Logger
	cache    *catalog.Cache
	registry *draft.Registry
	syncer   *syncer.Syncer
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, cache *catalog.Cache, registry *draft.Registry, sync *syncer.Syncer) *Handler {
	return &Handler{
		logger:   logger,
		cache:    cache,
		registry: registry,
		syncer:   sync,
		validate: validator.New(),
	}
}

// MountRoutes registers the composition endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, kind := range []draft.Kind{draft.KindSales, draft.KindPurchase} {
		kind := kind
		r.Route("/"+string(kind), func(r chi.Router) {
			r.Post("/", h.open(kind))
			r.Get("/", h.state(kind))
			r.Delete("/", h.cancel(kind))
			r.Put("/counterpart", h.selectCounterpart(kind))
			r.Put("/notes", h.setNotes(kind))
			r.Get("/suggest", h.suggest(kind))
			r.Post("/lines", h.addLine(kind))
			r.Put("/lines/{productID}", h.updateLine(kind))
			r.Delete("/lines/{productID}", h.removeLine(kind))
			r.Post("/submit", h.submit(kind))
		})
	}

	r.Route("/receive", func(r chi.Router) {
		r.Post("/{orderID}", h.openReceive)
		r.Get("/", h.receiveState)
		r.Delete("/", h.cancelReceive)
		r.Put("/notes", h.setReceiveNotes)
		r.Put("/lines/{productID}", h.updateReceiveLine)
		r.Post("/all", h.receiveAll)
		r.Post("/submit", h.submitReceive)
	})
}

func (h *Handler) open(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		b := h.registry.Open(sess.ID, kind)
		httpx.JSON(w, http.StatusCreated, stateOf(b))
	}
}

func (h *Handler) state(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		httpx.JSON(w, http.StatusOK, stateOf(b))
	}
}

func (h *Handler) cancel(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if b, ok := h.registry.Builder(sess.ID, kind); ok {
			b.Reset()
		}
		h.registry.Discard(sess.ID, kind)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) selectCounterpart(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		var req counterpartRequest
		if !h.decode(w, r, &req) {
			return
		}
		b.SelectCounterpart(req.ID)
		httpx.JSON(w, http.StatusOK, stateOf(b))
	}
}

func (h *Handler) setNotes(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		var req notesRequest
		if !h.decode(w, r, &req) {
			return
		}
		b.SetNotes(req.Notes)
		httpx.JSON(w, http.StatusOK, stateOf(b))
	}
}

// suggest filters the cached product list for the autocomplete panel.
func (h *Handler) suggest(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		products, err := h.products(r)
		if err != nil {
			auth.RespondError(w, r, err)
			return
		}
		b.SetSearchTerm(r.URL.Query().Get("q"))
		matches := b.Search(products)
		if matches == nil {
			matches = []draft.ProductRef{}
		}
		httpx.JSON(w, http.StatusOK, matches)
	}
}

func (h *Handler) addLine(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		var req addLineRequest
		if !h.decode(w, r, &req) {
			return
		}
		products, err := h.products(r)
		if err != nil {
			auth.RespondError(w, r, err)
			return
		}
		for _, p := range products {
			if p.ID == req.ProductID {
				b.AddProduct(p)
				httpx.JSON(w, http.StatusOK, stateOf(b))
				return
			}
		}
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not in catalog")
	}
}

func (h *Handler) updateLine(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		productID, ok := h.productID(w, r)
		if !ok {
			return
		}
		var req updateLineRequest
		if !h.decode(w, r, &req) {
			return
		}
		// Out-of-range edits are silently rejected; the response state shows
		// the unchanged line, which is how the view reverts the input.
		if req.Qty != nil {
			b.UpdateQuantity(productID, *req.Qty)
		}
		if req.UnitPrice != nil {
			b.UpdatePrice(productID, *req.UnitPrice)
		}
		httpx.JSON(w, http.StatusOK, stateOf(b))
	}
}

func (h *Handler) removeLine(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}
		productID, ok := h.productID(w, r)
		if !ok {
			return
		}
		b.RemoveLine(productID)
		httpx.JSON(w, http.StatusOK, stateOf(b))
	}
}

func (h *Handler) submit(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		b, ok := h.builder(w, r, kind)
		if !ok {
			return
		}

		key := h.registry.SubmitKey(sess.ID, kind)
		if !h.registry.BeginSubmit(key) {
			httpx.Problem(w, http.StatusConflict, "Submission Pending", "a submission is already in flight")
			return
		}
		defer h.registry.EndSubmit(key)

		if kind == draft.KindSales {
			order, err := h.syncer.SubmitSalesOrder(r.Context(), b)
			if err != nil {
				auth.RespondError(w, r, err)
				return
			}
			h.registry.Discard(sess.ID, kind)
			httpx.JSON(w, http.StatusCreated, order)
			return
		}

		order, err := h.syncer.SubmitPurchaseOrder(r.Context(), b)
		if err != nil {
			auth.RespondError(w, r, err)
			return
		}
		h.registry.Discard(sess.ID, kind)
		httpx.JSON(w, http.StatusCreated, order)
	}
}

func (h *Handler) openReceive(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	var orders []erp.PurchaseOrder
	if err := h.cache.Fetch(r.Context(), catalog.KeyPurchaseOrders, &orders); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	var order *erp.PurchaseOrder
	for i := range orders {
		if orders[i].ID == orderID {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "purchase order not found")
		return
	}

	products, err := h.products(r)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	d, err := draft.NewReceiveDraft(order, products)
	if err != nil {
		httpx.Problem(w, http.StatusConflict, "Not Receivable", err.Error())
		return
	}
	h.registry.OpenReceive(sess.ID, d)
	httpx.JSON(w, http.StatusCreated, receiveStateOf(d))
}

func (h *Handler) receiveState(w http.ResponseWriter, r *http.Request) {
	d, ok := h.receive(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, receiveStateOf(d))
}

func (h *Handler) cancelReceive(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	h.registry.DiscardReceive(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setReceiveNotes(w http.ResponseWriter, r *http.Request) {
	d, ok := h.receive(w, r)
	if !ok {
		return
	}
	var req notesRequest
	if !h.decode(w, r, &req) {
		return
	}
	d.SetNotes(req.Notes)
	httpx.JSON(w, http.StatusOK, receiveStateOf(d))
}

func (h *Handler) updateReceiveLine(w http.ResponseWriter, r *http.Request) {
	d, ok := h.receive(w, r)
	if !ok {
		return
	}
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req receiveLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	d.SetReceived(productID, req.QtyReceived)
	httpx.JSON(w, http.StatusOK, receiveStateOf(d))
}

func (h *Handler) receiveAll(w http.ResponseWriter, r *http.Request) {
	d, ok := h.receive(w, r)
	if !ok {
		return
	}
	d.ReceiveAllFull()
	httpx.JSON(w, http.StatusOK, receiveStateOf(d))
}

func (h *Handler) submitReceive(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	d, ok := h.receive(w, r)
	if !ok {
		return
	}

	key := h.registry.ReceiveSubmitKey(sess.ID)
	if !h.registry.BeginSubmit(key) {
		httpx.Problem(w, http.StatusConflict, "Submission Pending", "a submission is already in flight")
		return
	}
	defer h.registry.EndSubmit(key)

	order, err := h.syncer.SubmitReceipt(r.Context(), d)
	if err != nil {
		auth.RespondError(w, r, err)
		return
	}
	h.registry.DiscardReceive(sess.ID)
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) builder(w http.ResponseWriter, r *http.Request, kind draft.Kind) (*draft.Builder, bool) {
	sess := session.FromContext(r.Context())
	b, ok := h.registry.Builder(sess.ID, kind)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no open draft; open the composition view first")
		return nil, false
	}
	return b, true
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) (*draft.ReceiveDraft, bool) {
	sess := session.FromContext(r.Context())
	d, ok := h.registry.Receive(sess.ID)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no open receive draft")
		return nil, false
	}
	return d, true
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

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) products(r *http.Request) ([]draft.ProductRef, error) {
	var products []erp.Product
	if err := h.cache.Fetch(r.Context(), catalog.KeyProducts, &products); err != nil {
		return nil, err
	}
	refs := make([]draft.ProductRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, draft.ProductRef{
			ID:        p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			BuyPrice:  p.BuyPrice,
			SellPrice: p.SellPrice,
		})
	}
	return refs, nil
}
