package pricing

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
)

func TestResolveAppliesMarkup(t *testing.T) {
	all := []offers.Offer{
		offer("A", "p1", nil, "200", nil),
		offer("B", "p1", strPtr("v1"), "150", intPtr(2)),
	}
	snap := Resolve(ComputeCaps("p1", all), DefaultMarkupPercent)

	if snap.RetailFrom == nil || *snap.RetailFrom != 165 {
		t.Fatalf("unexpected retail from %v", snap.RetailFrom)
	}
	if snap.VariantRetail["v1"] != 165 {
		t.Fatalf("unexpected variant retail %v", snap.VariantRetail)
	}
	if _, ok := snap.VariantRetail["v2"]; ok {
		t.Fatal("variants without offers must not get a retail price")
	}
}

func TestResolveEncodesAbsentValuesAsNull(t *testing.T) {
	snap := Resolve(ComputeCaps("p1", nil), DefaultMarkupPercent)
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"minBaseCost":null`, `"minOverallCost":null`, `"retailFrom":null`, `"variantRetail":{}`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestResolveTracksMarkupChanges(t *testing.T) {
	caps := ComputeCaps("p1", []offers.Offer{offer("A", "p1", nil, "100", nil)})
	if got := *Resolve(caps, decimal.NewFromInt(10)).RetailFrom; got != 110 {
		t.Fatalf("expected 110, got %d", got)
	}
	if got := *Resolve(caps, decimal.NewFromInt(25)).RetailFrom; got != 125 {
		t.Fatalf("expected 125, got %d", got)
	}
}
