// Package fieldtype checks single field values against a declared type.
//
// Each Validator is an ordered list of tests; a value is valid when every test
// passes. A blank value fails every type, including Text.
package fieldtype

import (
	"fmt"
	"sort"

	"formzone-hq/indexer/pkg/validation"
)

// Type is a field-type keyword as used in project_config.json field_types.
type Type string

const (
	Text        Type = "text"
	Integer     Type = "integer"
	Decimal     Type = "decimal"
	Date        Type = "date"
	Email       Type = "email"
	IrishMobile Type = "irish_mobile"
	Eircode     Type = "eircode"
)

// Test is one named check a value must pass.
type Test struct {
	Name string
	Pass func(value string) bool
}

// Validator checks values of one field type.
type Validator struct {
	Type  Type
	Tests []Test
}

// Validate reports whether value passes every test.
func (v Validator) Validate(value string) bool {
	return v.FirstFailure(value) == ""
}

// FirstFailure returns the name of the first failing test, or "".
func (v Validator) FirstFailure(value string) string {
	for _, t := range v.Tests {
		if !t.Pass(value) {
			return t.Name
		}
	}
	return ""
}

var containsText = Test{Name: "is_empty", Pass: func(s string) bool { return !validation.IsBlank(s) }}

var validators = map[Type]Validator{
	Text:        {Type: Text, Tests: []Test{containsText}},
	Integer:     {Type: Integer, Tests: []Test{containsText, {Name: "not_integer", Pass: validation.IsInteger}}},
	Decimal:     {Type: Decimal, Tests: []Test{containsText, {Name: "not_decimal", Pass: validation.IsDecimal}}},
	Date:        {Type: Date, Tests: []Test{containsText, {Name: "not_date", Pass: validation.IsDate}}},
	Email:       {Type: Email, Tests: []Test{containsText, {Name: "not_email", Pass: validation.IsEmail}}},
	IrishMobile: {Type: IrishMobile, Tests: []Test{containsText, {Name: "not_irish_mobile", Pass: validation.IsIrishMobile}}},
	Eircode:     {Type: Eircode, Tests: []Test{containsText, {Name: "not_eircode", Pass: validation.IsEircode}}},
}

// UnknownTypeError indicates a field-type keyword has no validator.
type UnknownTypeError struct {
	Type string
}

// Error returns the error message.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown field type %q", e.Type)
}

// ForType returns the validator for a field-type keyword.
func ForType(name string) (Validator, error) {
	v, ok := validators[Type(name)]
	if !ok {
		return Validator{}, &UnknownTypeError{Type: name}
	}
	return v, nil
}

// Types returns the known field-type keywords in sorted order.
func Types() []string {
	out := make([]string, 0, len(validators))
	for t := range validators {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// Check validates every field with a declared type and returns the fields
// whose values fail, mapped to the failing test name.
func Check(fieldTypes map[string]string, values map[string]string) (map[string]string, error) {
	failures := make(map[string]string)
	for field, typ := range fieldTypes {
		v, err := ForType(typ)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		if name := v.FirstFailure(values[field]); name != "" {
			failures[field] = name
		}
	}
	return failures, nil
}
