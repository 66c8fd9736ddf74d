// Package syncer submits completed drafts to the upstream API and
// reconciles the cache keys those mutations make stale.
package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/draft"
	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/platform/httpx"
)

// Syncer couples the upstream client with the catalog cache. Submissions
// are never retried automatically; a failed submit leaves the draft intact
// so the user can correct and re-submit.
type Syncer struct {
	client *erp.Client
	cache  *catalog.Cache
	logger *slog.Logger
}

// NewSyncer constructs a Syncer.
func NewSyncer(client *erp.Client, cache *catalog.Cache, logger *slog.Logger) *Syncer {
	return &Syncer{client: client, cache: cache, logger: logger}
}

// SubmitSalesOrder sends the draft as a sales order. On success the order
// list, product stock snapshots, and dashboard aggregates are marked stale
// and the builder resets for the next composition.
func (s *Syncer) SubmitSalesOrder(ctx context.Context, b *draft.Builder) (*erp.SalesOrder, error) {
	if !b.CanSubmit() {
		return nil, fmt.Errorf("%w: select a customer and add at least one item", httpx.ErrValidation)
	}

	lines := b.Lines()
	items := make([]erp.CreateSalesOrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, erp.CreateSalesOrderItem{
			ProductID: line.ProductID,
			Qty:       line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  0,
		})
	}
	payload := erp.CreateSalesOrder{
		CustomerID: b.Counterpart(),
		Notes:      b.Notes(),
		Discount:   0,
		Items:      items,
	}

	order, err := s.client.CreateSalesOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(catalog.KeySalesOrders, catalog.KeyProducts, catalog.KeySummary, catalog.KeySalesChart)
	b.Reset()
	s.logger.Info("sales order submitted", slog.Int64("order_id", order.ID), slog.Int("lines", len(items)))
	return order, nil
}

// SubmitPurchaseOrder sends the draft as a purchase order.
func (s *Syncer) SubmitPurchaseOrder(ctx context.Context, b *draft.Builder) (*erp.PurchaseOrder, error) {
	if !b.CanSubmit() {
		return nil, fmt.Errorf("%w: select a supplier and add at least one item", httpx.ErrValidation)
	}

	lines := b.Lines()
	items := make([]erp.CreatePurchaseOrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, erp.CreatePurchaseOrderItem{
			ProductID: line.ProductID,
			Qty:       line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	payload := erp.CreatePurchaseOrder{
		SupplierID: b.Counterpart(),
		Notes:      b.Notes(),
		Items:      items,
	}

	order, err := s.client.CreatePurchaseOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(catalog.KeyPurchaseOrders, catalog.KeyProducts, catalog.KeySummary)
	b.Reset()
	s.logger.Info("purchase order submitted", slog.Int64("order_id", order.ID), slog.Int("lines", len(items)))
	return order, nil
}

// SubmitReceipt posts the goods receipt for the draft's purchase order.
// An all-zero draft is rejected before any network call. Receiving changes
// stock upstream, so the product and order caches go stale on success.
func (s *Syncer) SubmitReceipt(ctx context.Context, d *draft.ReceiveDraft) (*erp.PurchaseOrder, error) {
	if !d.HasReceivable() {
		return nil, fmt.Errorf("%w: nothing to receive", httpx.ErrValidation)
	}

	order, err := s.client.ReceiveOrder(ctx, d.OrderID(), d.Payload())
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(catalog.KeyPurchaseOrders, catalog.KeyProducts)
	s.logger.Info("goods receipt submitted", slog.Int64("order_id", d.OrderID()))
	return order, nil
}
