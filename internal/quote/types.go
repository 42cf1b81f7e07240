package quote

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/pricing"
	"github.com/angelmondragon/packfinderz-offers/pkg/enums"
)

// Warning flags a line that could not be fully priced.
type Warning = enums.QuoteWarningType

const (
	WarningPartialAllocation = enums.QuoteWarningPartialAllocation
	WarningNoAdmissiblePrice = enums.QuoteWarningNoAdmissiblePrice
)

// MaxItemQty bounds the quantity of one requested line.
const MaxItemQty = math.MaxInt32

var maxRetailTotal = decimal.NewFromInt(math.MaxInt64)

// Item is one requested cart line.
type Item struct {
	Key       string  `json:"key" validate:"required"`
	ProductID string  `json:"productId" validate:"required"`
	VariantID *string `json:"variantId,omitempty"`
	Qty       int     `json:"qty" validate:"gt=0"`
}

// Request is a cart to price.
type Request struct {
	Items []Item `json:"items" validate:"required,min=1,dive"`
}

// Allocation is the share of a line one supplier offer covers.
type Allocation struct {
	SupplierID      string          `json:"supplierId"`
	Qty             int             `json:"qty"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	RetailUnitPrice int64           `json:"retailUnitPrice"`
	RetailLineTotal int64           `json:"retailLineTotal"`
}

// Line is the priced result of one Item. LineTotal is retail, CostTotal is
// supplier cost.
type Line struct {
	Key          string          `json:"-"`
	ProductID    string          `json:"productId"`
	VariantID    *string         `json:"variantId"`
	QtyRequested int             `json:"qtyRequested"`
	QtyPriced    int             `json:"qtyPriced"`
	Allocations  []Allocation    `json:"allocations"`
	LineTotal    int64           `json:"lineTotal"`
	CostTotal    decimal.Decimal `json:"costTotal"`
	Warnings     []Warning       `json:"warnings,omitempty"`
}

// HasWarning reports whether w was raised for the line.
func (l Line) HasWarning(w Warning) bool {
	for _, got := range l.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// Quote is a priced cart. Lines are keyed by the request item key.
type Quote struct {
	Currency      string          `json:"currency"`
	MarkupPercent decimal.Decimal `json:"markupPercent"`
	SharedStock   bool            `json:"sharedStock"`
	Subtotal      int64           `json:"subtotal"`
	CostSubtotal  decimal.Decimal `json:"costSubtotal"`
	Lines         map[string]Line `json:"lines"`
	Order         []string        `json:"lineOrder"`
}

// Assemble totals lines into a Quote, keeping request order in Order.
func Assemble(currency string, markup decimal.Decimal, shared bool, lines []Line) Quote {
	q := Quote{
		Currency:      currency,
		MarkupPercent: markup,
		SharedStock:   shared,
		CostSubtotal:  decimal.Zero,
		Lines:         make(map[string]Line, len(lines)),
		Order:         make([]string, 0, len(lines)),
	}
	for _, line := range lines {
		q.Subtotal += line.LineTotal
		q.CostSubtotal = q.CostSubtotal.Add(line.CostTotal)
		q.Lines[line.Key] = line
		q.Order = append(q.Order, line.Key)
	}
	return q
}

// ExceedsRange recomputes every retail amount of q in decimal and reports
// whether a unit price, allocation, line or the subtotal does not fit in
// int64. The int64 fields of such a quote are not meaningful.
func (q Quote) ExceedsRange() bool {
	subtotal := decimal.Zero
	for _, line := range q.Lines {
		lineTotal := decimal.Zero
		for _, alloc := range line.Allocations {
			unit := pricing.RetailAmount(alloc.UnitCost, q.MarkupPercent)
			total := unit.Mul(decimal.NewFromInt(int64(alloc.Qty)))
			if total.GreaterThan(maxRetailTotal) {
				return true
			}
			lineTotal = lineTotal.Add(total)
		}
		if lineTotal.GreaterThan(maxRetailTotal) {
			return true
		}
		subtotal = subtotal.Add(lineTotal)
	}
	return subtotal.GreaterThan(maxRetailTotal)
}
