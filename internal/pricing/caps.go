package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
)

// Caps holds the cheapest admissible supplier costs of one product. Nil
// pointers and missing map keys mean no admissible offer exists.
type Caps struct {
	ProductID  string
	MinBase    *decimal.Decimal
	MinVariant map[string]decimal.Decimal
	MinOverall *decimal.Decimal
}

// ComputeCaps derives the cost floors of productID from offers. Offers for
// other products and inadmissible offers are ignored.
func ComputeCaps(productID string, all []offers.Offer) Caps {
	caps := Caps{ProductID: productID, MinVariant: map[string]decimal.Decimal{}}
	for _, offer := range all {
		if offer.ProductID != productID || !offer.Admissible() {
			continue
		}
		cost := offer.UnitCost
		if offer.IsBase() {
			caps.MinBase = minOf(caps.MinBase, cost)
		} else {
			current, ok := caps.MinVariant[*offer.VariantID]
			if !ok || cost.LessThan(current) {
				caps.MinVariant[*offer.VariantID] = cost
			}
		}
		caps.MinOverall = minOf(caps.MinOverall, cost)
	}
	return caps
}

// HasPrice reports whether any admissible offer exists.
func (c Caps) HasPrice() bool {
	return c.MinOverall != nil
}

func minOf(current *decimal.Decimal, candidate decimal.Decimal) *decimal.Decimal {
	if current == nil || candidate.LessThan(*current) {
		v := candidate
		return &v
	}
	return current
}
