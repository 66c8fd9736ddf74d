// Package draft holds the client-local state for composing sales and
// purchase orders before submission. A draft is owned by exactly one
// composition session, lives only in memory, and is discarded on cancel or
// consumed on successful submit. Totals here are display-side only; the
// upstream recomputes its own.
package draft

import (
	"strings"
	"sync"
)

// Kind selects which default unit price a product contributes.
type Kind string

const (
	// KindSales composes a sales order; new lines default to the sell price.
	KindSales Kind = "sales"
	// KindPurchase composes a purchase order; new lines default to the buy price.
	KindPurchase Kind = "purchase"
)

// ProductRef is the slice of a catalog product the builder needs: identity,
// a display-name snapshot, and the context-relevant default prices.
type ProductRef struct {
	ID        int64   `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	BuyPrice  float64 `json:"buy_price"`
	SellPrice float64 `json:"sell_price"`
}

// Line is one draft line item. Quantity never drops below 1; duplicate
// products merge into one line instead of adding rows.
type Line struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"qty"`
}

// Builder accumulates lines for one draft order. A browser overlaps
// requests for the same session (autocomplete while a line add is in
// flight), so all mutable state sits behind the mutex and each method
// is atomic.
type Builder struct {
	kind Kind

	mu          sync.Mutex
	lines       []Line
	counterpart int64
	notes       string
	searchTerm  string
}

// NewBuilder returns an empty draft for the given composition context.
func NewBuilder(kind Kind) *Builder {
	return &Builder{kind: kind}
}

// Kind returns the composition context.
func (b *Builder) Kind() Kind {
	return b.kind
}

// AddProduct merges the product into the draft: an existing line gains one
// unit at its current price, otherwise a new line is appended at quantity 1
// with the context default price. Always succeeds, and clears the active
// search term so the suggestion panel closes.
func (b *Builder) AddProduct(p ProductRef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer func() { b.searchTerm = "" }()

	for i := range b.lines {
		if b.lines[i].ProductID == p.ID {
			b.lines[i].Quantity++
			return
		}
	}

	price := p.SellPrice
	if b.kind == KindPurchase {
		price = p.BuyPrice
	}
	if price < 0 {
		price = 0
	}
	b.lines = append(b.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: price,
		Quantity:  1,
	})
}

// UpdateQuantity replaces a line's quantity. Values below 1 are rejected
// silently; the floor keeps every line shippable.
func (b *Builder) UpdateQuantity(productID int64, qty int) {
	if qty < 1 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		if b.lines[i].ProductID == productID {
			b.lines[i].Quantity = qty
			return
		}
	}
}

// UpdatePrice replaces a line's unit price. Negative prices are rejected
// silently.
func (b *Builder) UpdatePrice(productID int64, price float64) {
	if price < 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		if b.lines[i].ProductID == productID {
			b.lines[i].UnitPrice = price
			return
		}
	}
}

// RemoveLine drops the line for productID; no-op when absent.
func (b *Builder) RemoveLine(productID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		if b.lines[i].ProductID == productID {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			return
		}
	}
}

// Subtotal recomputes the draft total from current lines on every call.
// No tax or discount applies client-side, so this is also the total.
func (b *Builder) Subtotal() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sum float64
	for _, line := range b.lines {
		sum += line.UnitPrice * float64(line.Quantity)
	}
	return sum
}

// Lines returns a copy of the current lines in insertion order.
func (b *Builder) Lines() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// SelectCounterpart records the customer or supplier for the draft.
func (b *Builder) SelectCounterpart(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counterpart = id
}

// Counterpart returns the selected customer or supplier ID, 0 when unset.
func (b *Builder) Counterpart() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counterpart
}

// SetNotes attaches free-text notes to the draft.
func (b *Builder) SetNotes(notes string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = notes
}

// Notes returns the draft notes.
func (b *Builder) Notes() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notes
}

// SetSearchTerm records the active product search text.
func (b *Builder) SetSearchTerm(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchTerm = q
}

// SearchTerm returns the active product search text.
func (b *Builder) SearchTerm() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searchTerm
}

// Search filters products by case-insensitive substring match against name
// or SKU, preserving catalog order. An empty term yields no suggestions
// rather than the whole catalog.
func (b *Builder) Search(products []ProductRef) []ProductRef {
	term := strings.ToLower(strings.TrimSpace(b.SearchTerm()))
	if term == "" {
		return nil
	}
	var out []ProductRef
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.SKU), term) {
			out = append(out, p)
		}
	}
	return out
}

// CanSubmit reports whether the draft is complete enough to send: a
// counterpart is selected and at least one line exists. Submission controls
// stay disabled until this holds.
func (b *Builder) CanSubmit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counterpart != 0 && len(b.lines) > 0
}

// Reset clears lines, counterpart, notes, and search text. Called after a
// successful submission or an explicit cancel.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	b.counterpart = 0
	b.notes = ""
	b.searchTerm = ""
}
