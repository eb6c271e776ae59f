package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is human-readable output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat parses a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unsupported output format %q (want text or json)", s))
	}
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text. Values implementing
// fmt.Stringer, such as a *Table, render themselves.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(textOf(data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := io.WriteString(w, textOf(data))
	return err
}

func textOf(data interface{}) string {
	s := fmt.Sprintf("%v", data)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	default:
		return &TextFormatter{}
	}
}

// Table renders rows as a fixed-width terminal table.
type Table struct {
	writer table.Writer
}

// NewTable returns a table with the given column headers.
func NewTable(headers ...string) *Table {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	w.AppendHeader(row)
	return &Table{writer: w}
}

// Row appends a data row.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendRow(row)
}

// Footer appends a footer row, such as totals.
func (t *Table) Footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendFooter(row)
}

// AlignRight right-aligns the 1-based columns given, for numbers.
func (t *Table) AlignRight(columns ...int) {
	cfgs := make([]table.ColumnConfig, len(columns))
	for i, n := range columns {
		cfgs[i] = table.ColumnConfig{Number: n, Align: text.AlignRight}
	}
	t.writer.SetColumnConfigs(cfgs)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return t.writer.Length() }

// String renders the table.
func (t *Table) String() string {
	return t.writer.Render()
}

// Status is the outcome shown in front of a status line.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

var statusMarks = map[Status]struct {
	symbol string
	attr   color.Attribute
}{
	StatusOK:   {"✓", color.FgGreen},
	StatusWarn: {"⚠", color.FgYellow},
	StatusFail: {"✗", color.FgRed},
}

// PrintStatus writes a status line with a colored mark. Color is disabled
// automatically when w is not a terminal or NO_COLOR is set.
func PrintStatus(w io.Writer, status Status, format string, args ...any) {
	mark := statusMarks[status]
	c := color.New(mark.attr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(mark.symbol), fmt.Sprintf(format, args...))
}
