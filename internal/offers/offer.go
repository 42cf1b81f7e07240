package offers

import "github.com/shopspring/decimal"

// Offer is the canonical supplier offer every pricing computation consumes.
// A nil VariantID marks a base (product-level) offer and a nil AvailableQty
// means the supplier did not report stock.
type Offer struct {
	SupplierID   string          `json:"supplierId"`
	ProductID    string          `json:"productId"`
	VariantID    *string         `json:"variantId"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	AvailableQty *int            `json:"availableQty"`
	IsActive     bool            `json:"isActive"`
	IsInStock    bool            `json:"isInStock"`
}

// IsBase reports whether the offer targets the product rather than a variant.
func (o Offer) IsBase() bool {
	return o.VariantID == nil
}

// QuantityKnown reports whether the supplier published a stock figure.
func (o Offer) QuantityKnown() bool {
	return o.AvailableQty != nil
}

// Matches reports whether the offer targets variantID, or the base product
// when variantID is nil.
func (o Offer) Matches(variantID *string) bool {
	if variantID == nil {
		return o.VariantID == nil
	}
	return o.VariantID != nil && *o.VariantID == *variantID
}

// Admissible reports whether the offer may take part in price caps and
// allocation: active, in stock, positive cost, and either unknown or
// positive quantity.
func (o Offer) Admissible() bool {
	if !o.IsActive || !o.IsInStock {
		return false
	}
	if !o.UnitCost.IsPositive() {
		return false
	}
	return o.AvailableQty == nil || *o.AvailableQty > 0
}

// Available sums the known quantities of offers. Offers with unknown
// quantity are left out, so the figure is only suitable for display.
func Available(offers []Offer) int {
	total := 0
	for _, offer := range offers {
		if offer.AvailableQty != nil && *offer.AvailableQty > 0 {
			total += *offer.AvailableQty
		}
	}
	return total
}

// ForProduct returns the offers that belong to productID.
func ForProduct(offers []Offer, productID string) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.ProductID == productID {
			out = append(out, offer)
		}
	}
	return out
}
