package erp

// Product is a catalog product as served by the upstream inventory API.
// Stock counts are authoritative only upstream; a decoded Product is a
// snapshot that goes stale as soon as stock moves.
type Product struct {
	ID           int64   `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	CategoryID   *int64  `json:"category_id,omitempty"`
	BuyPrice     float64 `json:"buy_price"`
	SellPrice    float64 `json:"sell_price"`
	Unit         string  `json:"unit"`
	MinStock     int     `json:"min_stock"`
	CurrentStock int     `json:"current_stock"`
	IsActive     bool    `json:"is_active"`
}

// Customer is a sales counterpart.
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Supplier is a purchasing counterpart.
type Supplier struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
}

// CashAccount is a finance account with its upstream-computed balance.
type CashAccount struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

// Purchase order lifecycle statuses as the upstream reports them.
const (
	PurchaseStatusDraft     = "draft"
	PurchaseStatusOrdered   = "ordered"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// SalesOrderItem is a line on a submitted sales order.
type SalesOrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
	Subtotal  float64 `json:"subtotal"`
}

// SalesOrder is a submitted sales order with upstream-computed totals.
type SalesOrder struct {
	ID          int64            `json:"id"`
	OrderNumber string           `json:"order_number"`
	CustomerID  *int64           `json:"customer_id,omitempty"`
	OrderDate   string           `json:"order_date"`
	Subtotal    float64          `json:"subtotal"`
	Discount    float64          `json:"discount"`
	Total       float64          `json:"total"`
	Status      string           `json:"status"`
	Notes       string           `json:"notes,omitempty"`
	Items       []SalesOrderItem `json:"items"`
	Customer    *Customer        `json:"customer,omitempty"`
}

// PurchaseOrderItem is a line on a submitted purchase order.
type PurchaseOrderItem struct {
	ID        int64   `json:"id"`
	POID      int64   `json:"po_id"`
	ProductID int64   `json:"product_id"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// PurchaseOrder is a submitted purchase order. Receiving is offered only
// while Status is PurchaseStatusOrdered.
type PurchaseOrder struct {
	ID         int64               `json:"id"`
	PONumber   string              `json:"po_number"`
	SupplierID int64               `json:"supplier_id"`
	OrderDate  string              `json:"order_date"`
	Subtotal   float64             `json:"subtotal"`
	Total      float64             `json:"total"`
	Status     string              `json:"status"`
	Notes      string              `json:"notes,omitempty"`
	Items      []PurchaseOrderItem `json:"items"`
	Supplier   *Supplier           `json:"supplier,omitempty"`
}

// DashboardSummary aggregates the landing-page figures.
type DashboardSummary struct {
	SalesToday     float64 `json:"sales_today"`
	PurchasesMonth float64 `json:"purchases_month"`
	LowStockItems  int     `json:"low_stock_items"`
	CashBalance    float64 `json:"cash_balance"`
}

// ChartPoint is one day of the sales chart.
type ChartPoint struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

// SalesChart is the dashboard sales series.
type SalesChart struct {
	Data []ChartPoint `json:"data"`
}

// LowStockItem flags a product under its minimum stock level.
type LowStockItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
}

// CreateSalesOrderItem is one normalized line of a sales submission.
type CreateSalesOrderItem struct {
	ProductID int64   `json:"product_id"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
}

// CreateSalesOrder is the POST /sales/orders payload.
type CreateSalesOrder struct {
	CustomerID int64                  `json:"customer_id"`
	Notes      string                 `json:"notes"`
	Discount   float64                `json:"discount"`
	Items      []CreateSalesOrderItem `json:"items"`
}

// CreatePurchaseOrderItem is one normalized line of a purchase submission.
type CreatePurchaseOrderItem struct {
	ProductID int64   `json:"product_id"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

// CreatePurchaseOrder is the POST /purchases/orders payload.
type CreatePurchaseOrder struct {
	SupplierID int64                     `json:"supplier_id"`
	Notes      string                    `json:"notes"`
	Items      []CreatePurchaseOrderItem `json:"items"`
}

// ReceiptItem reports received quantity for one ordered line. Lines with
// zero received quantity are omitted from the payload, never sent as zero.
type ReceiptItem struct {
	ProductID   int64 `json:"product_id"`
	QtyReceived int   `json:"qty_received"`
}

// ReceiveGoods is the POST /purchases/orders/{id}/receive payload.
type ReceiveGoods struct {
	Notes string        `json:"notes"`
	Items []ReceiptItem `json:"items"`
}

// UpsertProduct is the POST and PUT /inventory/products payload.
type UpsertProduct struct {
	SKU        string  `json:"sku" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	CategoryID *int64  `json:"category_id,omitempty"`
	BuyPrice   float64 `json:"buy_price" validate:"gte=0"`
	SellPrice  float64 `json:"sell_price" validate:"gte=0"`
	Unit       string  `json:"unit"`
	MinStock   int     `json:"min_stock" validate:"gte=0"`
	IsActive   bool    `json:"is_active"`
}

// UpsertCustomer is the POST and PUT /sales/customers payload.
type UpsertCustomer struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty"`
}

// UpsertSupplier is the POST and PUT /purchases/suppliers payload.
type UpsertSupplier struct {
	Name        string `json:"name" validate:"required"`
	ContactName string `json:"contact_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Address     string `json:"address,omitempty"`
}

// UpsertCashAccount is the POST and PUT /finance/accounts payload. The
// balance is upstream-computed and never sent.
type UpsertCashAccount struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=cash bank ewallet"`
	IsActive bool   `json:"is_active"`
}

// JournalEntry is one finance transaction against a cash account.
type JournalEntry struct {
	ID            int64   `json:"id"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	CashAccountID int64   `json:"cash_account_id"`
	Category      string  `json:"category,omitempty"`
	Reference     string  `json:"reference,omitempty"`
	Date          string  `json:"date"`
}

// CreateJournalEntry is the POST /finance/transactions payload.
type CreateJournalEntry struct {
	Description   string  `json:"description" validate:"required"`
	Type          string  `json:"type" validate:"required,oneof=income expense"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	CashAccountID int64   `json:"cash_account_id" validate:"required,gt=0"`
	Category      string  `json:"category,omitempty"`
	Reference     string  `json:"reference,omitempty"`
}

// Token is the upstream login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
