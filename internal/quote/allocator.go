package quote

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	"github.com/angelmondragon/packfinderz-offers/internal/pricing"
)

type candidate struct {
	index int
	offer offers.Offer
}

// stock tracks what is left of known-quantity offers, keyed by offer index.
type stock map[int]int

func (s stock) remaining(c candidate) int {
	if left, ok := s[c.index]; ok {
		return left
	}
	return *c.offer.AvailableQty
}

// AllocateLine prices one item against all offers. The offers slice is only
// read. Retail totals are int64; Quote.ExceedsRange tells whether they fit.
func AllocateLine(item Item, all []offers.Offer, markup decimal.Decimal) Line {
	return allocate(item, all, markup, stock{})
}

// AllocateCart prices items in order. With shared set, every line draws on
// one working copy of offer stock so two lines cannot both consume the same
// units; otherwise each line sees full stock.
func AllocateCart(items []Item, all []offers.Offer, markup decimal.Decimal, shared bool) []Line {
	lines := make([]Line, 0, len(items))
	book := stock{}
	for _, item := range items {
		if !shared {
			book = stock{}
		}
		lines = append(lines, allocate(item, all, markup, book))
	}
	return lines
}

func allocate(item Item, all []offers.Offer, markup decimal.Decimal, book stock) Line {
	line := Line{
		Key:          item.Key,
		ProductID:    item.ProductID,
		VariantID:    item.VariantID,
		QtyRequested: item.Qty,
		Allocations:  []Allocation{},
		CostTotal:    decimal.Zero,
	}
	if item.Qty <= 0 {
		return line
	}

	candidates := candidatesFor(item, all)
	if len(candidates) == 0 {
		line.Warnings = []Warning{WarningNoAdmissiblePrice}
		return line
	}

	need := item.Qty
	for _, c := range candidates {
		if need == 0 {
			break
		}
		take := need
		if c.offer.QuantityKnown() {
			left := book.remaining(c)
			if left <= 0 {
				continue
			}
			if take > left {
				take = left
			}
			book[c.index] = left - take
		}

		unitRetail := pricing.Retail(c.offer.UnitCost, markup)
		qty := decimal.NewFromInt(int64(take))
		alloc := Allocation{
			SupplierID:      c.offer.SupplierID,
			Qty:             take,
			UnitCost:        c.offer.UnitCost,
			LineTotal:       c.offer.UnitCost.Mul(qty),
			RetailUnitPrice: unitRetail,
			RetailLineTotal: unitRetail * int64(take),
		}
		line.Allocations = append(line.Allocations, alloc)
		line.QtyPriced += take
		line.LineTotal += alloc.RetailLineTotal
		line.CostTotal = line.CostTotal.Add(alloc.LineTotal)
		need -= take
	}

	if line.QtyPriced < line.QtyRequested {
		line.Warnings = []Warning{WarningPartialAllocation}
	}
	return line
}

// candidatesFor returns the admissible offers targeting item, cheapest
// first. Equal costs prefer offers with a known quantity, then supplier id,
// then input position.
func candidatesFor(item Item, all []offers.Offer) []candidate {
	out := make([]candidate, 0)
	for i, offer := range all {
		if offer.ProductID != item.ProductID || !offer.Matches(item.VariantID) || !offer.Admissible() {
			continue
		}
		out = append(out, candidate{index: i, offer: offer})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].offer, out[j].offer
		if cmp := a.UnitCost.Cmp(b.UnitCost); cmp != 0 {
			return cmp < 0
		}
		if a.QuantityKnown() != b.QuantityKnown() {
			return a.QuantityKnown()
		}
		if a.SupplierID != b.SupplierID {
			return a.SupplierID < b.SupplierID
		}
		return out[i].index < out[j].index
	})
	return out
}
