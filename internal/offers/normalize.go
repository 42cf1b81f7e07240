package offers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one raw offer as delivered by a supplier feed or read from the
// database as a column map. Field names vary between sources.
type Record map[string]any

var (
	ErrMissingSupplierID = errors.New("supplier id is missing")
	ErrMissingProductID  = errors.New("product id is missing")
)

var (
	supplierIDFields = []string{"supplierId", "supplier_id", "supplier.id"}
	productIDFields  = []string{"productId", "product_id", "product.id"}
	variantIDFields  = []string{"variantId", "variant_id", "variant.id"}

	costFields = []string{
		"unitCost", "unit_cost", "cost",
		"supplierCost", "supplier_cost",
		"price", "supplierPrice", "supplier_price",
		"pricing.unitCost", "pricing.cost", "price.amount",
	}
	quantityFields = []string{
		"availableQty", "available_qty", "quantity", "qty",
		"stock", "stockQty", "stock_qty",
		"inventory.available", "inventory.availableQty",
	}
	activeFields  = []string{"isActive", "is_active", "active"}
	inStockFields = []string{"isInStock", "is_in_stock", "inStock", "in_stock"}
)

// Normalize maps a raw record to an Offer. It reports false when the record
// lacks a supplier or product id.
func Normalize(rec Record) (*Offer, bool) {
	offer, err := NormalizeRecord(rec)
	if err != nil {
		return nil, false
	}
	return offer, true
}

// NormalizeRecord is Normalize with the rejection reason.
//
// The first cost candidate that parses to a finite number wins, even when it
// is not positive; such offers are kept but never admissible. A record with
// no parsable cost gets a zero cost for the same reason.
func NormalizeRecord(rec Record) (*Offer, error) {
	supplierID, ok := firstID(rec, supplierIDFields)
	if !ok {
		return nil, ErrMissingSupplierID
	}
	productID, ok := firstID(rec, productIDFields)
	if !ok {
		return nil, ErrMissingProductID
	}

	offer := &Offer{
		SupplierID: supplierID,
		ProductID:  productID,
		IsActive:   true,
	}
	if variantID, ok := firstID(rec, variantIDFields); ok {
		offer.VariantID = &variantID
	}

	for _, field := range costFields {
		if cost, ok := toDecimal(lookup(rec, field)); ok {
			offer.UnitCost = cost
			break
		}
	}

	for _, field := range quantityFields {
		if qty, ok := toInt(lookup(rec, field)); ok {
			offer.AvailableQty = &qty
			break
		}
	}

	if active, ok := firstBool(rec, activeFields); ok {
		offer.IsActive = active
	} else if status, ok := lookup(rec, "status").(string); ok && strings.TrimSpace(status) != "" {
		offer.IsActive = strings.EqualFold(strings.TrimSpace(status), "active")
	}

	if inStock, ok := firstBool(rec, inStockFields); ok {
		offer.IsInStock = inStock
	} else if offer.AvailableQty != nil {
		offer.IsInStock = *offer.AvailableQty > 0
	} else {
		offer.IsInStock = true
	}

	return offer, nil
}

// NormalizeAll normalizes every record, returning the offers in input order
// and the indices of the records that were rejected.
func NormalizeAll(records []Record) ([]Offer, []int) {
	out := make([]Offer, 0, len(records))
	var rejected []int
	for i, rec := range records {
		offer, ok := Normalize(rec)
		if !ok {
			rejected = append(rejected, i)
			continue
		}
		out = append(out, *offer)
	}
	return out, rejected
}

// lookup resolves a field name; dotted names walk nested objects when the
// record has no flat key of that name.
func lookup(rec Record, field string) any {
	if v, ok := rec[field]; ok {
		return v
	}
	if !strings.Contains(field, ".") {
		return nil
	}
	var current any = map[string]any(rec)
	for _, part := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]any:
			current = node[part]
		case Record:
			current = node[part]
		default:
			return nil
		}
		if current == nil {
			return nil
		}
	}
	return current
}

func firstID(rec Record, fields []string) (string, bool) {
	for _, field := range fields {
		if id, ok := toID(lookup(rec, field)); ok {
			return id, true
		}
	}
	return "", false
}

func firstBool(rec Record, fields []string) (bool, bool) {
	for _, field := range fields {
		if b, ok := toBool(lookup(rec, field)); ok {
			return b, true
		}
	}
	return false, false
}

func toID(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case []byte:
		s = string(t)
	case *string:
		if t == nil {
			return "", false
		}
		s = *t
	case json.Number:
		s = t.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprint(t)
	case fmt.Stringer:
		s = t.String()
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, false
		}
		return *t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int8:
		return decimal.NewFromInt(int64(t)), true
	case int16:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case uint:
		return parseDecimalString(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return decimal.NewFromInt(int64(t)), true
	case uint16:
		return decimal.NewFromInt(int64(t)), true
	case uint32:
		return decimal.NewFromInt(int64(t)), true
	case uint64:
		return parseDecimalString(strconv.FormatUint(t, 10))
	case json.Number:
		return parseDecimalString(t.String())
	case string:
		return parseDecimalString(t)
	case []byte:
		return parseDecimalString(string(t))
	default:
		return decimal.Zero, false
	}
}

func parseDecimalString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// toInt parses a quantity. Fractions are truncated and negative stock is
// read as zero.
func toInt(v any) (int, bool) {
	d, ok := toDecimal(v)
	if !ok {
		return 0, false
	}
	n := d.IntPart()
	if n < 0 {
		n = 0
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return int(n), true
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case nil:
		return false, false
	case bool:
		return t, true
	case *bool:
		if t == nil {
			return false, false
		}
		return *t, true
	case string:
		return parseBoolString(t)
	case []byte:
		return parseBoolString(string(t))
	default:
		if d, ok := toDecimal(t); ok {
			return !d.IsZero(), true
		}
		return false, false
	}
}

func parseBoolString(s string) (bool, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	if d, err := strconv.ParseFloat(s, 64); err == nil {
		return d != 0, true
	}
	return false, false
}
