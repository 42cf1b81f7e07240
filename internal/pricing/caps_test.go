package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
)

func offer(supplier, product string, variant *string, cost string, qty *int) offers.Offer {
	return offers.Offer{
		SupplierID:   supplier,
		ProductID:    product,
		VariantID:    variant,
		UnitCost:     decimal.RequireFromString(cost),
		AvailableQty: qty,
		IsActive:     true,
		IsInStock:    true,
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestComputeCapsPicksMinimaPerScope(t *testing.T) {
	all := []offers.Offer{
		offer("A", "p1", nil, "120", intPtr(3)),
		offer("B", "p1", nil, "100", nil),
		offer("C", "p1", strPtr("v1"), "95", intPtr(1)),
		offer("D", "p1", strPtr("v1"), "97", intPtr(4)),
		offer("E", "p1", strPtr("v2"), "130", nil),
		offer("F", "p2", nil, "1", intPtr(9)),
	}

	caps := ComputeCaps("p1", all)
	if caps.MinBase == nil || !caps.MinBase.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected min base %v", caps.MinBase)
	}
	if got := caps.MinVariant["v1"]; !got.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("unexpected v1 min %s", got)
	}
	if got := caps.MinVariant["v2"]; !got.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("unexpected v2 min %s", got)
	}
	if caps.MinOverall == nil || !caps.MinOverall.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("unexpected overall %v", caps.MinOverall)
	}
	if !caps.HasPrice() {
		t.Fatal("expected a price")
	}
}

func TestComputeCapsSkipsInadmissibleOffers(t *testing.T) {
	inactive := offer("A", "p1", nil, "50", nil)
	inactive.IsActive = false
	outOfStock := offer("B", "p1", nil, "60", nil)
	outOfStock.IsInStock = false

	all := []offers.Offer{
		inactive,
		outOfStock,
		offer("C", "p1", nil, "0", nil),
		offer("D", "p1", nil, "-5", nil),
		offer("E", "p1", strPtr("v1"), "70", intPtr(0)),
	}
	caps := ComputeCaps("p1", all)
	if caps.MinBase != nil || caps.MinOverall != nil || len(caps.MinVariant) != 0 {
		t.Fatalf("expected no caps, got %+v", caps)
	}
	if caps.HasPrice() {
		t.Fatal("expected no price")
	}
}

func TestComputeCapsOverallIsLowerBound(t *testing.T) {
	all := []offers.Offer{
		offer("A", "p1", nil, "12.50", nil),
		offer("B", "p1", strPtr("v1"), "13", intPtr(2)),
		offer("C", "p1", strPtr("v2"), "11.75", intPtr(2)),
		offer("D", "p1", nil, "12.49", intPtr(1)),
	}
	caps := ComputeCaps("p1", all)
	for _, o := range all {
		if o.UnitCost.LessThan(*caps.MinOverall) {
			t.Fatalf("overall %s exceeds admissible cost %s", caps.MinOverall, o.UnitCost)
		}
	}
	if !caps.MinOverall.Equal(decimal.RequireFromString("11.75")) {
		t.Fatalf("unexpected overall %s", caps.MinOverall)
	}
}

func TestComputeCapsDoesNotMutateOffers(t *testing.T) {
	all := []offers.Offer{offer("A", "p1", nil, "10", intPtr(2))}
	before := all[0]
	_ = ComputeCaps("p1", all)
	if !all[0].UnitCost.Equal(before.UnitCost) || *all[0].AvailableQty != 2 {
		t.Fatalf("offer mutated: %+v", all[0])
	}
}
