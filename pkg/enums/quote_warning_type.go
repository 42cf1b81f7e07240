package enums

import "fmt"

// QuoteWarningType enumerates the reasons a quote line was not fully priced.
type QuoteWarningType string

const (
	QuoteWarningPartialAllocation QuoteWarningType = "partial_allocation"
	QuoteWarningNoAdmissiblePrice QuoteWarningType = "no_admissible_price"
)

var validQuoteWarningTypes = []QuoteWarningType{
	QuoteWarningPartialAllocation,
	QuoteWarningNoAdmissiblePrice,
}

// String implements fmt.Stringer.
func (w QuoteWarningType) String() string {
	return string(w)
}

// IsValid reports whether the value is known.
func (w QuoteWarningType) IsValid() bool {
	for _, candidate := range validQuoteWarningTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseQuoteWarningType converts raw input into a QuoteWarningType.
func ParseQuoteWarningType(value string) (QuoteWarningType, error) {
	for _, candidate := range validQuoteWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote warning type %q", value)
}
