package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
)

// OrderView is the API shape of a stored priced order.
type OrderView struct {
	ID             uuid.UUID        `json:"id"`
	Currency       string           `json:"currency"`
	MarkupPercent  decimal.Decimal  `json:"markupPercent"`
	Subtotal       int64            `json:"subtotal"`
	CostSubtotal   decimal.Decimal  `json:"costSubtotal"`
	QuotedSubtotal int64            `json:"quotedSubtotal"`
	DriftAccepted  bool             `json:"driftAccepted"`
	CreatedAt      time.Time        `json:"createdAt"`
	Allocations    []AllocationView `json:"allocations"`
}

// AllocationView is one supplier share of an order line.
type AllocationView struct {
	LineKey         string          `json:"lineKey"`
	ProductID       string          `json:"productId"`
	VariantID       *string         `json:"variantId"`
	SupplierID      string          `json:"supplierId"`
	Qty             int             `json:"qty"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	RetailUnitPrice int64           `json:"retailUnitPrice"`
}

// NewOrderView maps a stored order to its API shape.
func NewOrderView(order *models.PricedOrder) OrderView {
	view := OrderView{
		ID:             order.ID,
		Currency:       order.Currency,
		MarkupPercent:  order.MarkupPercent,
		Subtotal:       order.Subtotal,
		CostSubtotal:   order.CostSubtotal,
		QuotedSubtotal: order.QuotedSubtotal,
		DriftAccepted:  order.DriftAccepted,
		CreatedAt:      order.CreatedAt,
		Allocations:    make([]AllocationView, 0, len(order.Allocations)),
	}
	for _, a := range order.Allocations {
		view.Allocations = append(view.Allocations, AllocationView{
			LineKey:         a.LineKey,
			ProductID:       a.ProductID,
			VariantID:       a.VariantID,
			SupplierID:      a.SupplierID,
			Qty:             a.Qty,
			UnitCost:        a.UnitCost,
			RetailUnitPrice: a.RetailUnitPrice,
		})
	}
	return view
}
