// Package dashboard serves the aggregate views through the catalog cache,
// so a freshly submitted order shows up after its invalidation without the
// dashboard polling upstream on every render.
package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-front/internal/auth"
	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/platform/httpx"
)

// Handler owns the dashboard routes.
type Handler struct {
	logger *slog.Logger
	cache  *catalog.Cache
	client *erp.Client
}

// NewHandler constructs a Handler. The client is used only for the ranged
// chart variant, which bypasses the cache because its key space is
// parameterized.
func NewHandler(logger *slog.Logger, cache *catalog.Cache, client *erp.Client) *Handler {
	return &Handler{logger: logger, cache: cache, client: client}
}

// MountRoutes registers the dashboard endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/sales-chart", h.salesChart)
	r.Get("/low-stock", h.lowStock)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	var out erp.DashboardSummary
	if err := h.cache.Fetch(r.Context(), catalog.KeySummary, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaryVM(out))
}

func (h *Handler) salesChart(w http.ResponseWriter, r *http.Request) {
	if rangeDays := parseRange(r.URL.Query().Get("range")); rangeDays > 0 {
		chart, err := h.client.SalesChart(r.Context(), rangeDays)
		if err != nil {
			auth.RespondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, chart)
		return
	}

	var out erp.SalesChart
	if err := h.cache.Fetch(r.Context(), catalog.KeySalesChart, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	var out []erp.LowStockItem
	if err := h.cache.Fetch(r.Context(), catalog.KeyLowStock, &out); err != nil {
		auth.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func parseRange(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	if n > 365 {
		n = 365
	}
	return n
}
