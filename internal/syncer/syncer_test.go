package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/draft"
	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/platform/httpx"
)

type fixture struct {
	syncer   *Syncer
	cache    *catalog.Cache
	requests *int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) fixture {
	t.Helper()
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := erp.NewClient(srv.URL, time.Second, nil)
	cache := catalog.NewCache(nil, time.Minute)
	logger := slog.New(slog.DiscardHandler)
	return fixture{
		syncer:   NewSyncer(client, cache, logger),
		cache:    cache,
		requests: &requests,
	}
}

func salesDraft() *draft.Builder {
	b := draft.NewBuilder(draft.KindSales)
	b.AddProduct(draft.ProductRef{ID: 1, Name: "Product A", SellPrice: 10})
	b.AddProduct(draft.ProductRef{ID: 1, Name: "Product A", SellPrice: 10})
	b.AddProduct(draft.ProductRef{ID: 2, Name: "Product B", SellPrice: 5})
	b.UpdateQuantity(2, 3)
	b.SelectCounterpart(42)
	b.SetNotes("deliver monday")
	return b
}

func TestSubmitSalesOrderSuccess(t *testing.T) {
	var gotPayload erp.CreateSalesOrder
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(erp.SalesOrder{ID: 501})
	})

	// Warm the products key so invalidation is observable.
	var productLoads int32
	f.cache.Register(catalog.KeyProducts, func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&productLoads, 1), nil
	})
	var warm int32
	require.NoError(t, f.cache.Fetch(context.Background(), catalog.KeyProducts, &warm))

	b := salesDraft()
	order, err := f.syncer.SubmitSalesOrder(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, int64(501), order.ID)

	assert.Equal(t, int64(42), gotPayload.CustomerID)
	assert.Equal(t, "deliver monday", gotPayload.Notes)
	require.Len(t, gotPayload.Items, 2)
	assert.Equal(t, erp.CreateSalesOrderItem{ProductID: 1, Qty: 2, UnitPrice: 10}, gotPayload.Items[0])
	assert.Equal(t, erp.CreateSalesOrderItem{ProductID: 2, Qty: 3, UnitPrice: 5}, gotPayload.Items[1])

	assert.Empty(t, b.Lines(), "builder resets after success")
	assert.Zero(t, b.Counterpart())

	require.NoError(t, f.cache.Fetch(context.Background(), catalog.KeyProducts, &warm))
	assert.Equal(t, int32(2), atomic.LoadInt32(&productLoads), "products key must be stale after submit")
}

func TestSubmitSalesOrderFailureLeavesDraftIntact(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Insufficient stock"})
	})

	b := salesDraft()
	wantLines := b.Lines()

	_, err := f.syncer.SubmitSalesOrder(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock")

	assert.Equal(t, wantLines, b.Lines(), "failed submit must not touch the draft")
	assert.Equal(t, int64(42), b.Counterpart())
	assert.Equal(t, "deliver monday", b.Notes())
}

func TestSubmitSalesOrderRejectsIncompleteDraft(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	b := draft.NewBuilder(draft.KindSales)
	b.AddProduct(draft.ProductRef{ID: 1, SellPrice: 10})

	_, err := f.syncer.SubmitSalesOrder(context.Background(), b)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, atomic.LoadInt32(f.requests), "validation failures stay off the network")
}

func TestSubmitPurchaseOrderSuccess(t *testing.T) {
	var gotPayload erp.CreatePurchaseOrder
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purchases/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(erp.PurchaseOrder{ID: 88, Status: erp.PurchaseStatusOrdered})
	})

	b := draft.NewBuilder(draft.KindPurchase)
	b.AddProduct(draft.ProductRef{ID: 7, Name: "Crate", BuyPrice: 2.5})
	b.SelectCounterpart(5)

	order, err := f.syncer.SubmitPurchaseOrder(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, int64(88), order.ID)
	assert.Equal(t, int64(5), gotPayload.SupplierID)
	require.Len(t, gotPayload.Items, 1)
	assert.Equal(t, erp.CreatePurchaseOrderItem{ProductID: 7, Qty: 1, UnitPrice: 2.5}, gotPayload.Items[0])
	assert.Empty(t, b.Lines())
}

func TestSubmitReceiptAllZeroNeverCallsNetwork(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	po := &erp.PurchaseOrder{
		ID:     9,
		Status: erp.PurchaseStatusOrdered,
		Items:  []erp.PurchaseOrderItem{{ProductID: 1, Qty: 3}},
	}
	d, err := draft.NewReceiveDraft(po, nil)
	require.NoError(t, err)
	d.SetReceived(1, 0)

	_, err = f.syncer.SubmitReceipt(context.Background(), d)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, atomic.LoadInt32(f.requests))
}

func TestSubmitReceiptSuccess(t *testing.T) {
	var gotPayload erp.ReceiveGoods
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purchases/orders/9/receive", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(erp.PurchaseOrder{ID: 9, Status: erp.PurchaseStatusReceived})
	})

	po := &erp.PurchaseOrder{
		ID:     9,
		Status: erp.PurchaseStatusOrdered,
		Items: []erp.PurchaseOrderItem{
			{ProductID: 1, Qty: 3},
			{ProductID: 2, Qty: 2},
		},
	}
	d, err := draft.NewReceiveDraft(po, nil)
	require.NoError(t, err)
	d.SetReceived(2, 0)

	order, err := f.syncer.SubmitReceipt(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, erp.PurchaseStatusReceived, order.Status)
	require.Len(t, gotPayload.Items, 1)
	assert.Equal(t, erp.ReceiptItem{ProductID: 1, QtyReceived: 3}, gotPayload.Items[0])
}
