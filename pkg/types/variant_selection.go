package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// VariantSelection is one (attribute, value) choice a variant row makes.
type VariantSelection struct {
	AttributeID string `json:"attributeId"`
	ValueID     string `json:"valueId"`
}

// IsSet reports whether both sides of the pair carry an id.
func (s VariantSelection) IsSet() bool {
	return strings.TrimSpace(s.AttributeID) != "" && strings.TrimSpace(s.ValueID) != ""
}

// VariantSelections is persisted as JSONB.
type VariantSelections []VariantSelection

// Value serializes the selections to JSON.
func (v VariantSelections) Value() (driver.Value, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// Scan decodes JSONB into the selection slice.
func (v *VariantSelections) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded VariantSelections
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*v = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
