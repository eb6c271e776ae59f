package validation

import "strings"

// ValueKind discriminates the variants of Value.
type ValueKind uint8

const (
	// KindEmpty is a missing or blank value.
	KindEmpty ValueKind = iota
	// KindText is any non-blank string as read from the row store.
	KindText
	// KindTicked is a tickbox state set programmatically.
	KindTicked
)

// Value is a field value translated once per row from the row store's raw strings.
// The zero Value is Empty.
type Value struct {
	kind   ValueKind
	text   string
	ticked bool
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Text wraps a raw string. Blank strings become Empty.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

// Ticked returns a tickbox value. An unticked box carries no value.
func Ticked(on bool) Value {
	if !on {
		return Value{}
	}
	return Value{kind: KindTicked, ticked: true}
}

// ParseValue converts a raw row-store cell into a Value.
func ParseValue(raw string) Value { return Text(raw) }

// Kind returns the variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether the value is blank.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsTicked reports tickbox semantics: any non-blank value other than a
// case-insensitive "false" counts as ticked.
func (v Value) IsTicked() bool {
	switch v.kind {
	case KindTicked:
		return v.ticked
	case KindText:
		return !strings.EqualFold(strings.TrimSpace(v.text), "false")
	default:
		return false
	}
}

// String returns the raw text of the value.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindTicked:
		return "Ticked"
	default:
		return ""
	}
}

// Trimmed returns the text with surrounding whitespace removed.
func (v Value) Trimmed() string { return strings.TrimSpace(v.String()) }

// Values maps field names to their values for one row.
type Values map[string]Value

// ValuesFromStrings builds Values from raw row-store cells.
func ValuesFromStrings(raw map[string]string) Values {
	values := make(Values, len(raw))
	for name, cell := range raw {
		values[name] = ParseValue(cell)
	}
	return values
}

// Get returns the value for name, Empty when absent.
func (v Values) Get(name string) Value { return v[name] }
