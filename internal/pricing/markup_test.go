package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRetail(t *testing.T) {
	tests := []struct {
		name string
		cost string
		pct  string
		want int64
	}{
		{name: "default markup", cost: "200", pct: "10", want: 220},
		{name: "rounds half up", cost: "105", pct: "10", want: 116},
		{name: "rounds down", cost: "101", pct: "10", want: 111},
		{name: "fractional cost", cost: "99.99", pct: "12.5", want: 112},
		{name: "zero cost", cost: "0", pct: "10", want: 0},
		{name: "negative cost", cost: "-10", pct: "10", want: 0},
		{name: "zero markup", cost: "100", pct: "0", want: 100},
		{name: "markup below -100 clamps", cost: "100", pct: "-150", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Retail(decimal.RequireFromString(tt.cost), decimal.RequireFromString(tt.pct))
			if got != tt.want {
				t.Fatalf("Retail(%s, %s) = %d, want %d", tt.cost, tt.pct, got, tt.want)
			}
		})
	}
}

func TestRetailIsMonotone(t *testing.T) {
	pct := decimal.NewFromInt(10)
	prev := int64(0)
	for cents := int64(1); cents <= 50000; cents += 37 {
		got := Retail(decimal.New(cents, -2), pct)
		if got < prev {
			t.Fatalf("retail decreased at cost %d cents: %d < %d", cents, got, prev)
		}
		prev = got
	}

	cost := decimal.NewFromInt(250)
	prev = 0
	for p := int64(0); p <= 300; p += 5 {
		got := Retail(cost, decimal.NewFromInt(p))
		if got < prev {
			t.Fatalf("retail decreased at pct %d: %d < %d", p, got, prev)
		}
		prev = got
	}
}

func TestMarkupPercentEffective(t *testing.T) {
	twelve := decimal.NewFromInt(12)
	zero := decimal.Zero
	negative := decimal.NewFromInt(-3)

	cases := []struct {
		name   string
		markup MarkupPercent
		want   decimal.Decimal
	}{
		{name: "unset", markup: MarkupPercent{}, want: DefaultMarkupPercent},
		{name: "stored", markup: MarkupPercent{Value: &twelve}, want: twelve},
		{name: "zero falls back", markup: MarkupPercent{Value: &zero}, want: DefaultMarkupPercent},
		{name: "negative falls back", markup: MarkupPercent{Value: &negative}, want: DefaultMarkupPercent},
		{name: "configured fallback", markup: MarkupPercent{Fallback: decimal.NewFromInt(15)}, want: decimal.NewFromInt(15)},
	}
	for _, tc := range cases {
		if got := tc.markup.Effective(); !got.Equal(tc.want) {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestUnsetMarkupPricesAtTenPercent(t *testing.T) {
	pct := MarkupPercent{Value: ParseMarkup("")}.Effective()
	if got := Retail(decimal.NewFromInt(200), pct); got != 220 {
		t.Fatalf("expected 220, got %d", got)
	}
}

func TestParseMarkup(t *testing.T) {
	if ParseMarkup("  ") != nil {
		t.Fatal("blank should be nil")
	}
	if ParseMarkup("ten") != nil {
		t.Fatal("non-numeric should be nil")
	}
	got := ParseMarkup(" 7.5 ")
	if got == nil || !got.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("unexpected parse %v", got)
	}
}

func TestRetailAmountKeepsValuesBeyondInt64(t *testing.T) {
	cost := decimal.RequireFromString("10000000000000000000")
	got := RetailAmount(cost, decimal.NewFromInt(10))
	if !got.Equal(decimal.RequireFromString("11000000000000000000")) {
		t.Fatalf("RetailAmount = %s", got)
	}
	if !RetailAmount(decimal.Zero, decimal.NewFromInt(10)).IsZero() {
		t.Fatal("expected zero for zero cost")
	}
	if Retail(decimal.NewFromInt(200), decimal.NewFromInt(10)) != RetailAmount(decimal.NewFromInt(200), decimal.NewFromInt(10)).IntPart() {
		t.Fatal("Retail and RetailAmount disagree")
	}
}
