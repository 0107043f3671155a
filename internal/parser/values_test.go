package parser

import (
	"reflect"
	"testing"
)

func TestCleanValue(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "None", "N/A", "NA", " N/A "} {
		if got := CleanValue(in); got != "" {
			t.Errorf("CleanValue(%q) = %q, want empty", in, got)
		}
	}
	if got := CleanValue("  Acme Corp "); got != "Acme Corp" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	// only exact placeholders count
	if got := CleanValue("NASA"); got != "NASA" {
		t.Errorf("expected NASA kept, got %q", got)
	}
}

func TestTypedAccessors(t *testing.T) {
	obj := map[string]any{
		"name":       "N/A",
		"values":     []any{"A", nil, 3.0, "null"},
		"evidence":   "single snippet",
		"confidence": "0.75",
		"count":      2.0,
	}
	if got := String(obj, "name"); got != "" {
		t.Errorf("expected placeholder cleared, got %q", got)
	}
	if got := String(obj, "count"); got != "2" {
		t.Errorf("expected formatted number, got %q", got)
	}
	if got, want := Strings(obj, "values"), []string{"A", "", "3", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("Strings(values) = %v, want %v", got, want)
	}
	if got, want := Strings(obj, "evidence"), []string{"single snippet"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Strings(evidence) = %v, want %v", got, want)
	}
	if got := Strings(obj, "missing"); got != nil {
		t.Errorf("expected nil for missing key, got %v", got)
	}
	if got := Float(obj, "confidence", 0.5); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	if got := Float(obj, "missing", 0.5); got != 0.5 {
		t.Errorf("expected default, got %v", got)
	}
}

func TestFloatRejectsNonFinite(t *testing.T) {
	obj := map[string]any{"nan": "NaN", "inf": "Inf", "neg": " -infinity ", "ok": " 0.25 "}
	for _, key := range []string{"nan", "inf", "neg"} {
		if got := Float(obj, key, 0.5); got != 0.5 {
			t.Errorf("Float(%s) = %v, want default", key, got)
		}
	}
	if got := Float(obj, "ok", 0.5); got != 0.25 {
		t.Errorf("Float(ok) = %v", got)
	}
}

func TestField(t *testing.T) {
	raw := `customer_name: "Acme Corp", 'meeting_date': 'Mar 15, 2024', "other": "N/A"`
	if got, ok := Field(raw, "customer_name"); !ok || got != "Acme Corp" {
		t.Errorf("customer_name = %q, %v", got, ok)
	}
	if got, ok := Field(raw, "meeting_date"); !ok || got != "Mar 15, 2024" {
		t.Errorf("meeting_date = %q, %v", got, ok)
	}
	if _, ok := Field(raw, "other"); ok {
		t.Error("placeholder value should not count as found")
	}
	if _, ok := Field(raw, "missing"); ok {
		t.Error("missing key should not be found")
	}
}
