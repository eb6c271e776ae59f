package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Failure is a single validation finding attached to a page and field.
type Failure struct {
	Page    int    `json:"page"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FailureKey identifies the (page, field) slot a failure occupies.
type FailureKey struct {
	Page  int
	Field string
}

// Key returns the merge key of the failure.
func (f Failure) Key() FailureKey {
	return FailureKey{Page: f.Page, Field: f.Field}
}

// Lookup is the read-only view of the lookup manager used by strategies.
type Lookup interface {
	// LookupValue returns the cell at column in the reference row keyed by value.
	LookupValue(value string, column int) (string, bool, error)

	// MatchValue compares the indexed value of field against the looked-up cell.
	// It returns a message and true on mismatch.
	MatchValue(value string, column int, field string) (string, bool, error)
}

// Context carries everything a strategy needs for one rule invocation.
// A fresh Context is built per rule; strategies must not modify it.
type Context struct {
	// FieldValues holds the current row's values.
	FieldValues Values

	// FieldNames are the field names the rule applies to, in declared order.
	FieldNames []string

	// Params are the rule's declared parameters.
	Params Params

	// FieldToPage maps field names to page numbers. Nil means every field is on page 1.
	FieldToPage map[string]int

	// Lookup is nil when no lookup list is configured or it failed to load.
	Lookup Lookup

	// RowIndex is the zero-based output row being validated.
	RowIndex int
}

// PageOf returns the page of field, defaulting to 1.
func (c *Context) PageOf(field string) int {
	if page, ok := c.FieldToPage[field]; ok {
		return page
	}
	return 1
}

// Value returns the value of field, Empty when absent.
func (c *Context) Value(field string) Value {
	return c.FieldValues.Get(field)
}

// Params are the free-form parameters of a rule declaration.
type Params map[string]any

// Int returns an integer parameter or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	n, ok := toFloat(raw)
	if !ok || n != math.Trunc(n) {
		return 0, &ParamError{Param: key, Want: "integer", Got: raw}
	}
	return int(n), nil
}

// Float returns a numeric parameter or def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	n, ok := toFloat(raw)
	if !ok {
		return 0, &ParamError{Param: key, Want: "number", Got: raw}
	}
	return n, nil
}

// String returns a string parameter or def when absent.
func (p Params) String(key, def string) (string, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ParamError{Param: key, Want: "string", Got: raw}
	}
	return s, nil
}

// IntList returns a list-of-integers parameter or def when absent.
func (p Params) IntList(key string, def []int) ([]int, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}

	switch list := raw.(type) {
	case []int:
		return list, nil
	case []any:
		out := make([]int, 0, len(list))
		for _, item := range list {
			n, ok := toFloat(item)
			if !ok || n != math.Trunc(n) {
				return nil, &ParamError{Param: key, Want: "list of integers", Got: raw}
			}
			out = append(out, int(n))
		}
		return out, nil
	default:
		return nil, &ParamError{Param: key, Want: "list of integers", Got: raw}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// formatNumber renders a float the way the capture tool always has:
// integral values keep a trailing ".0".
func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
