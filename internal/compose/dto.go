package compose

import "github.com/meridian-erp/meridian-front/internal/draft"

type addLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type updateLineRequest struct {
	Qty       *int     `json:"qty,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

type counterpartRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type receiveLineRequest struct {
	QtyReceived int `json:"qty_received" validate:"gte=0"`
}

// draftState is what the composition view renders after every mutation.
// Subtotal is recomputed from the lines on each response, never cached.
type draftState struct {
	Kind        draft.Kind   `json:"kind"`
	Counterpart int64        `json:"counterpart_id"`
	Notes       string       `json:"notes"`
	Lines       []draft.Line `json:"lines"`
	Subtotal    float64      `json:"subtotal"`
	Total       float64      `json:"total"`
	CanSubmit   bool         `json:"can_submit"`
}

func stateOf(b *draft.Builder) draftState {
	subtotal := b.Subtotal()
	return draftState{
		Kind:        b.Kind(),
		Counterpart: b.Counterpart(),
		Notes:       b.Notes(),
		Lines:       b.Lines(),
		Subtotal:    subtotal,
		Total:       subtotal,
		CanSubmit:   b.CanSubmit(),
	}
}

// receiveState is the receiving view's render model.
type receiveState struct {
	OrderID     int64               `json:"order_id"`
	Notes       string              `json:"notes"`
	Lines       []draft.ReceiveLine `json:"lines"`
	Submittable bool                `json:"submittable"`
}

func receiveStateOf(d *draft.ReceiveDraft) receiveState {
	return receiveState{
		OrderID:     d.OrderID(),
		Notes:       d.Notes(),
		Lines:       d.Lines(),
		Submittable: d.HasReceivable(),
	}
}
