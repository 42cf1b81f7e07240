package enums

import (
	"fmt"
	"strings"
)

// Currency is the ISO code quotes and order snapshots are denominated in.
// Retail prices are whole units of the currency.
type Currency string

const (
	CurrencyIDR Currency = "IDR"
	CurrencyJPY Currency = "JPY"
	CurrencyKRW Currency = "KRW"
	CurrencyVND Currency = "VND"
)

var validCurrencies = []Currency{
	CurrencyIDR,
	CurrencyJPY,
	CurrencyKRW,
	CurrencyVND,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validCurrencies {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
