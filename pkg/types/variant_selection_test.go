package types

import "testing"

func TestVariantSelectionsValueScan(t *testing.T) {
	in := VariantSelections{
		{AttributeID: "color", ValueID: "red"},
		{AttributeID: "size", ValueID: "xl"},
	}
	raw, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out VariantSelections
	if err := out.Scan(raw); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[1].ValueID != "xl" {
		t.Fatalf("unexpected selections %+v", out)
	}
}

func TestVariantSelectionsNilHandling(t *testing.T) {
	var empty VariantSelections
	raw, err := empty.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if string(raw.([]byte)) != "[]" {
		t.Fatalf("nil selections should persist as an empty array, got %s", raw)
	}

	out := VariantSelections{{AttributeID: "a", ValueID: "b"}}
	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil after scanning NULL, got %+v", out)
	}
	if err := out.Scan(42); err == nil {
		t.Fatal("expected error for unsupported scan type")
	}
}

func TestVariantSelectionIsSet(t *testing.T) {
	if (VariantSelection{AttributeID: "color", ValueID: " "}).IsSet() {
		t.Fatal("blank value id should not count as set")
	}
	if !(VariantSelection{AttributeID: "color", ValueID: "red"}).IsSet() {
		t.Fatal("expected selection to be set")
	}
}
