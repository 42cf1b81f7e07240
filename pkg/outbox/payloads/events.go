package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPricedEvent carries the committed order snapshot to downstream consumers.
type OrderPricedEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	Currency       string            `json:"currency"`
	MarkupPercent  decimal.Decimal   `json:"markup_percent"`
	Subtotal       int64             `json:"subtotal"`
	CostSubtotal   decimal.Decimal   `json:"cost_subtotal"`
	QuotedSubtotal int64             `json:"quoted_subtotal"`
	DriftAccepted  bool              `json:"drift_accepted"`
	Lines          []OrderPricedLine `json:"lines"`
}

// OrderPricedLine is one requested line of a committed order.
type OrderPricedLine struct {
	Key         string                  `json:"key"`
	ProductID   string                  `json:"product_id"`
	VariantID   *string                 `json:"variant_id,omitempty"`
	Qty         int                     `json:"qty"`
	LineTotal   int64                   `json:"line_total"`
	Allocations []OrderPricedAllocation `json:"allocations"`
}

// OrderPricedAllocation attributes part of a line to one supplier.
type OrderPricedAllocation struct {
	SupplierID      string          `json:"supplier_id"`
	Qty             int             `json:"qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	RetailUnitPrice int64           `json:"retail_unit_price"`
}

// OffersImportedEvent summarizes one supplier feed import.
type OffersImportedEvent struct {
	ImportID    uuid.UUID `json:"import_id"`
	Source      string    `json:"source,omitempty"`
	SupplierIDs []string  `json:"supplier_ids"`
	ProductIDs  []string  `json:"product_ids"`
	Upserted    int       `json:"upserted"`
	Rejected    int       `json:"rejected"`
}
