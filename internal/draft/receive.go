package draft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/meridian-erp/meridian-front/internal/erp"
)

// ErrNotReceivable rejects opening a receive draft for an order that is not
// in the ordered state.
var ErrNotReceivable = errors.New("draft: order is not receivable")

// ReceiveLine maps one ordered line to the quantity actually received.
// ReceivedQty stays within [0, OrderedQty].
type ReceiveLine struct {
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	OrderedQty  int    `json:"ordered_qty"`
	ReceivedQty int    `json:"received_qty"`
}

// ReceiveDraft tracks goods receipt entry for a submitted purchase order.
// Every line defaults to receiving the full ordered quantity. Like
// Builder, overlapping requests for the same session serialize on the
// internal mutex.
type ReceiveDraft struct {
	orderID int64

	mu    sync.Mutex
	lines []ReceiveLine
	notes string
}

// NewReceiveDraft opens a receive draft for an ordered purchase order,
// prefilled to full receipt. Product names come from the catalog snapshot;
// unknown products keep a placeholder name for display.
func NewReceiveDraft(order *erp.PurchaseOrder, products []ProductRef) (*ReceiveDraft, error) {
	if order.Status != erp.PurchaseStatusOrdered {
		return nil, fmt.Errorf("%w: status %q", ErrNotReceivable, order.Status)
	}

	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	lines := make([]ReceiveLine, 0, len(order.Items))
	for _, item := range order.Items {
		name, ok := names[item.ProductID]
		if !ok {
			name = "Unknown Product"
		}
		lines = append(lines, ReceiveLine{
			ProductID:   item.ProductID,
			Name:        name,
			OrderedQty:  item.Qty,
			ReceivedQty: item.Qty,
		})
	}
	return &ReceiveDraft{orderID: order.ID, lines: lines}, nil
}

// OrderID returns the purchase order this draft receives against.
func (d *ReceiveDraft) OrderID() int64 {
	return d.orderID
}

// SetReceived updates one line's received quantity. Negative values are
// rejected silently; values above the ordered quantity clamp to it.
func (d *ReceiveDraft) SetReceived(productID int64, qty int) {
	if qty < 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		if d.lines[i].ProductID == productID {
			if qty > d.lines[i].OrderedQty {
				qty = d.lines[i].OrderedQty
			}
			d.lines[i].ReceivedQty = qty
			return
		}
	}
}

// ReceiveAllFull sets every line's received quantity to its ordered
// quantity, whatever was entered before. Calling it twice changes nothing.
func (d *ReceiveDraft) ReceiveAllFull() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		d.lines[i].ReceivedQty = d.lines[i].OrderedQty
	}
}

// SetNotes attaches free-text notes to the receipt.
func (d *ReceiveDraft) SetNotes(notes string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = notes
}

// Notes returns the receipt notes.
func (d *ReceiveDraft) Notes() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notes
}

// Lines returns a copy of the current lines.
func (d *ReceiveDraft) Lines() []ReceiveLine {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ReceiveLine, len(d.lines))
	copy(out, d.lines)
	return out
}

// HasReceivable reports whether at least one line has a positive received
// quantity; an all-zero draft must not reach the network.
func (d *ReceiveDraft) HasReceivable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, line := range d.lines {
		if line.ReceivedQty > 0 {
			return true
		}
	}
	return false
}

// Payload builds the receipt payload, omitting zero-quantity lines.
func (d *ReceiveDraft) Payload() erp.ReceiveGoods {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make([]erp.ReceiptItem, 0, len(d.lines))
	for _, line := range d.lines {
		if line.ReceivedQty == 0 {
			continue
		}
		items = append(items, erp.ReceiptItem{
			ProductID:   line.ProductID,
			QtyReceived: line.ReceivedQty,
		})
	}
	return erp.ReceiveGoods{Notes: d.notes, Items: items}
}
