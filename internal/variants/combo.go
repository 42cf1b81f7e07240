package variants

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/packfinderz-offers/pkg/types"
)

// Row is one proposed or stored variant of a product.
type Row struct {
	ID         string                  `json:"id"`
	SKU        *string                 `json:"sku,omitempty"`
	Selections types.VariantSelections `json:"selections"`
}

// ComboKey identifies the attribute-value combination a row selects. It is
// order independent.
type ComboKey string

// KeyOf builds the combo key of selections. Pairs without a value are
// ignored; ok is false when nothing remains.
func KeyOf(selections types.VariantSelections) (ComboKey, bool) {
	set := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		if !sel.IsSet() {
			continue
		}
		set[strings.TrimSpace(sel.AttributeID)+"="+strings.TrimSpace(sel.ValueID)] = struct{}{}
	}
	if len(set) == 0 {
		return "", false
	}
	pairs := make([]string, 0, len(set))
	for pair := range set {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return ComboKey(strings.Join(pairs, "|")), true
}

// DuplicateGroup lists rows sharing one combo key.
type DuplicateGroup struct {
	Key    ComboKey `json:"key"`
	RowIDs []string `json:"rowIds"`
}

// ComboReport is every combo problem found in one pass.
type ComboReport struct {
	Duplicates []DuplicateGroup `json:"duplicates"`
	Incomplete []string         `json:"incomplete"`
}

// OK reports whether no problems were found.
func (r ComboReport) OK() bool {
	return len(r.Duplicates) == 0 && len(r.Incomplete) == 0
}

// Err returns a *DuplicateComboError describing the report, or nil.
func (r ComboReport) Err() error {
	if r.OK() {
		return nil
	}
	return &DuplicateComboError{Report: r}
}

// DuplicateComboError rejects a variant set with repeated or empty combos.
type DuplicateComboError struct {
	Report ComboReport
}

func (e *DuplicateComboError) Error() string {
	return fmt.Sprintf("variant combinations invalid: %d duplicate group(s), %d incomplete row(s)",
		len(e.Report.Duplicates), len(e.Report.Incomplete))
}

// ValidateCombos groups rows by combo key. Groups keep first-seen order and
// rows keep input order. Rows are reported by RowRef.
func ValidateCombos(rows []Row) ComboReport {
	report := ComboReport{Duplicates: []DuplicateGroup{}, Incomplete: []string{}}
	groups := map[ComboKey][]string{}
	var order []ComboKey
	for i, row := range rows {
		key, ok := KeyOf(row.Selections)
		if !ok {
			report.Incomplete = append(report.Incomplete, RowRef(i, row))
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], RowRef(i, row))
	}
	for _, key := range order {
		if ids := groups[key]; len(ids) > 1 {
			report.Duplicates = append(report.Duplicates, DuplicateGroup{Key: key, RowIDs: ids})
		}
	}
	return report
}

// RowRef names a row in reports: its id, or its position when it has none.
func RowRef(index int, row Row) string {
	if id := strings.TrimSpace(row.ID); id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}
