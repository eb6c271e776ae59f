package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestValue tests the value union built from raw cells.
func TestValue(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		kind   ValueKind
		ticked bool
		str    string
	}{
		{"blank text is empty", ParseValue("   "), KindEmpty, false, ""},
		{"text", ParseValue(" Murphy "), KindText, true, " Murphy "},
		{"false text", ParseValue("False"), KindText, false, "False"},
		{"ticked", Ticked(true), KindTicked, true, "Ticked"},
		{"unticked", Ticked(false), KindEmpty, false, ""},
		{"zero value", Value{}, KindEmpty, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Kind() != tt.kind {
				t.Errorf("Expected kind %v, got %v", tt.kind, tt.value.Kind())
			}
			if tt.value.IsTicked() != tt.ticked {
				t.Errorf("Expected IsTicked %v, got %v", tt.ticked, tt.value.IsTicked())
			}
			if tt.value.String() != tt.str {
				t.Errorf("Expected String %q, got %q", tt.str, tt.value.String())
			}
		})
	}
}

// TestValuesFromStrings tests conversion of a row-store row.
func TestValuesFromStrings(t *testing.T) {
	got := ValuesFromStrings(map[string]string{"a": "Ticked", "b": ""})
	want := Values{"a": Text("Ticked"), "b": Empty()}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Value{})); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
	if !got.Get("missing").IsEmpty() {
		t.Error("Expected missing field to be empty")
	}
}

// TestParams tests typed access to rule parameters.
func TestParams(t *testing.T) {
	var decoded Params
	if err := json.Unmarshal([]byte(`{"max": 2, "tolerance": 0.05, "exclusive_field": "none", "num_characters": [4, 6], "bad": "x", "frac": 1.5}`), &decoded); err != nil {
		t.Fatal(err)
	}

	if n, err := decoded.Int("max", 1); err != nil || n != 2 {
		t.Errorf("Int(max) = %d, %v", n, err)
	}
	if n, err := decoded.Int("absent", 7); err != nil || n != 7 {
		t.Errorf("Int(absent) = %d, %v", n, err)
	}
	if f, err := decoded.Float("tolerance", 0.01); err != nil || f != 0.05 {
		t.Errorf("Float(tolerance) = %v, %v", f, err)
	}
	if s, err := decoded.String("exclusive_field", ""); err != nil || s != "none" {
		t.Errorf("String(exclusive_field) = %q, %v", s, err)
	}
	list, err := decoded.IntList("num_characters", nil)
	if err != nil {
		t.Fatalf("IntList error = %v", err)
	}
	if diff := cmp.Diff([]int{4, 6}, list); diff != "" {
		t.Errorf("IntList mismatch (-want +got):\n%s", diff)
	}

	var perr *ParamError
	if _, err := decoded.Int("bad", 1); !errors.As(err, &perr) {
		t.Errorf("Expected ParamError for string max, got %v", err)
	}
	if _, err := decoded.Int("frac", 1); !errors.As(err, &perr) {
		t.Errorf("Expected ParamError for fractional int, got %v", err)
	}
	if _, err := decoded.String("max", ""); !errors.As(err, &perr) {
		t.Errorf("Expected ParamError for numeric string param, got %v", err)
	}

	var nilParams Params
	if n, err := nilParams.Int("max", 1); err != nil || n != 1 {
		t.Errorf("nil Params Int = %d, %v", n, err)
	}
}

// TestPageOf tests page defaulting.
func TestPageOf(t *testing.T) {
	ctx := &Context{FieldToPage: map[string]int{"a": 3}}
	if ctx.PageOf("a") != 3 {
		t.Errorf("Expected page 3, got %d", ctx.PageOf("a"))
	}
	if ctx.PageOf("b") != 1 {
		t.Errorf("Expected default page 1, got %d", ctx.PageOf("b"))
	}
	if (&Context{}).PageOf("a") != 1 {
		t.Error("Expected nil mapping to default to page 1")
	}
}

// TestFormatNumber tests number rendering in messages.
func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		30:     "30.0",
		1234.5: "1234.5",
		-2:     "-2.0",
		0.1:    "0.1",
	}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
