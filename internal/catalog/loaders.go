package catalog

import (
	"context"

	"github.com/meridian-erp/meridian-front/internal/erp"
)

// RegisterLoaders binds every cache key to its upstream fetch. The bearer
// token travels in the context, so a loader runs with the credentials of
// whichever request triggered the fetch.
func RegisterLoaders(c *Cache, client *erp.Client) {
	c.Register(KeyProducts, func(ctx context.Context) (any, error) {
		return client.Products(ctx)
	})
	c.Register(KeyCustomers, func(ctx context.Context) (any, error) {
		return client.Customers(ctx)
	})
	c.Register(KeySuppliers, func(ctx context.Context) (any, error) {
		return client.Suppliers(ctx)
	})
	c.Register(KeyCashAccounts, func(ctx context.Context) (any, error) {
		return client.CashAccounts(ctx)
	})
	c.Register(KeySalesOrders, func(ctx context.Context) (any, error) {
		return client.SalesOrders(ctx)
	})
	c.Register(KeyPurchaseOrders, func(ctx context.Context) (any, error) {
		return client.PurchaseOrders(ctx)
	})
	c.Register(KeyTransactions, func(ctx context.Context) (any, error) {
		return client.Transactions(ctx)
	})
	c.Register(KeySummary, func(ctx context.Context) (any, error) {
		return client.DashboardSummary(ctx)
	})
	c.Register(KeySalesChart, func(ctx context.Context) (any, error) {
		return client.SalesChart(ctx, 0)
	})
	c.Register(KeyLowStock, func(ctx context.Context) (any, error) {
		return client.LowStock(ctx)
	})
}
