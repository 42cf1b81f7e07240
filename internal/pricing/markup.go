package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MarkupSettingKey names the settings row holding the retail markup.
const MarkupSettingKey = "pricingMarkupPercent"

var (
	// DefaultMarkupPercent applies when no usable markup is stored.
	DefaultMarkupPercent = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)
)

// MarkupPercent is a stored markup value together with the fallback used
// when the stored value is missing or not positive.
type MarkupPercent struct {
	Value    *decimal.Decimal
	Fallback decimal.Decimal
}

// ParseMarkup reads a stored setting value. Blank or non-numeric input
// yields a nil value.
func ParseMarkup(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// Effective returns the stored value when positive, else the fallback, else
// DefaultMarkupPercent.
func (m MarkupPercent) Effective() decimal.Decimal {
	if m.Value != nil && m.Value.IsPositive() {
		return *m.Value
	}
	if m.Fallback.IsPositive() {
		return m.Fallback
	}
	return DefaultMarkupPercent
}

// Retail converts a supplier unit cost to a whole-unit retail price:
// round(cost * (1 + pct/100)), half away from zero. Non-positive costs and
// results below zero yield 0.
func Retail(cost, pct decimal.Decimal) int64 {
	return RetailAmount(cost, pct).IntPart()
}

// RetailAmount is Retail before the int64 conversion. Callers that multiply
// or sum retail prices use it to check the result still fits.
func RetailAmount(cost, pct decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	price := cost.Mul(hundred.Add(pct)).Div(hundred).Round(0)
	if !price.IsPositive() {
		return decimal.Zero
	}
	return price
}
