package pricing

import "github.com/shopspring/decimal"

// Snapshot is the price view of one product. Absent values encode as JSON
// null so callers can tell "no price" from a zero price.
type Snapshot struct {
	MinBaseCost               *decimal.Decimal           `json:"minBaseCost"`
	MinVariantCostByVariantID map[string]decimal.Decimal `json:"minVariantCostByVariantId"`
	MinOverallCost            *decimal.Decimal           `json:"minOverallCost"`
	RetailFrom                *int64                     `json:"retailFrom"`
	VariantRetail             map[string]int64           `json:"variantRetail"`
}

// Resolve applies markup to caps. Only variants with an offer of their own
// get a VariantRetail entry.
func Resolve(caps Caps, markup decimal.Decimal) Snapshot {
	snap := Snapshot{
		MinBaseCost:               caps.MinBase,
		MinVariantCostByVariantID: make(map[string]decimal.Decimal, len(caps.MinVariant)),
		MinOverallCost:            caps.MinOverall,
		VariantRetail:             make(map[string]int64, len(caps.MinVariant)),
	}
	for id, cost := range caps.MinVariant {
		snap.MinVariantCostByVariantID[id] = cost
		snap.VariantRetail[id] = Retail(cost, markup)
	}
	if caps.MinOverall != nil {
		from := Retail(*caps.MinOverall, markup)
		snap.RetailFrom = &from
	}
	return snap
}
