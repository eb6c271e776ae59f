// Package lookup answers reference-table questions for validation rules.
//
// A Manager holds two tables: the lookup list, a CSV keyed by one of its
// columns (the prime index), and a copy of the batch output CSV so that rules
// can compare an indexed value with the reference data. The output copy is
// refreshed with LoadOutput before validating, since the reviewer may have
// edited and saved the batch in between.
package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const bom = "\uFEFF"

// Manager holds a lookup list and the output table for one batch.
type Manager struct {
	lookupPath string
	outputPath string
	primeIndex int

	lookup     map[string][]string
	header     []string
	columns    map[string]int
	rows       [][]string
	currentRow int
}

// New loads the lookup list at lookupPath, keyed by column primeIndex, and the
// output CSV at outputPath.
func New(lookupPath, outputPath string, primeIndex int) (*Manager, error) {
	if primeIndex < 0 {
		return nil, &LoadError{Path: lookupPath, Cause: fmt.Errorf("negative prime index %d", primeIndex)}
	}

	m := &Manager{
		lookupPath: lookupPath,
		outputPath: outputPath,
		primeIndex: primeIndex,
		lookup:     make(map[string][]string),
	}
	if err := m.loadLookup(); err != nil {
		return nil, err
	}
	if err := m.LoadOutput(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) loadLookup() error {
	records, err := readCSV(m.lookupPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	// First row is a header.
	for i, row := range records[1:] {
		if len(row) <= m.primeIndex {
			return &LoadError{
				Path:  m.lookupPath,
				Line:  i + 2,
				Cause: fmt.Errorf("row has %d columns, prime index is %d", len(row), m.primeIndex),
			}
		}
		m.lookup[row[m.primeIndex]] = row
	}
	return nil
}

// LoadOutput (re)reads the output CSV, replacing the previous copy.
func (m *Manager) LoadOutput() error {
	records, err := readCSV(m.outputPath)
	if err != nil {
		return err
	}

	m.header = nil
	m.rows = nil
	m.columns = make(map[string]int)
	if len(records) == 0 {
		return nil
	}

	m.header = records[0]
	for i, name := range m.header {
		if _, dup := m.columns[name]; !dup {
			m.columns[name] = i
		}
	}
	m.rows = records[1:]
	return nil
}

// SetCurrentRow positions the output row cursor and returns the manager.
func (m *Manager) SetCurrentRow(row int) *Manager {
	m.currentRow = row
	return m
}

// CurrentRow returns the output row cursor.
func (m *Manager) CurrentRow() int { return m.currentRow }

// Len returns the number of entries in the lookup list.
func (m *Manager) Len() int { return len(m.lookup) }

// OutputRows returns the number of data rows in the output table.
func (m *Manager) OutputRows() int { return len(m.rows) }

// Header returns the output table header.
func (m *Manager) Header() []string { return m.header }

// IndexedValue returns the value of field in the current output row.
func (m *Manager) IndexedValue(field string) (string, error) {
	col, ok := m.columns[field]
	if !ok {
		return "", &FieldNotFoundError{Field: field}
	}
	if m.currentRow < 0 || m.currentRow >= len(m.rows) {
		return "", &RowOutOfRangeError{Row: m.currentRow, Rows: len(m.rows)}
	}
	row := m.rows[m.currentRow]
	if col >= len(row) {
		return "", nil
	}
	return row[col], nil
}

// LookupValue returns column of the lookup row keyed by value. The boolean is
// false when value is not a key.
func (m *Manager) LookupValue(value string, column int) (string, bool, error) {
	row, ok := m.lookup[value]
	if !ok {
		return "", false, nil
	}
	if column < 0 || column >= len(row) {
		return "", false, &ColumnOutOfRangeError{Key: value, Column: column, Width: len(row)}
	}
	return row[column], true, nil
}

// MatchValue compares the looked-up cell for value with the indexed value of
// field in the current row, ignoring case. It returns a message and true on
// mismatch; a key missing from the lookup list is not a mismatch.
func (m *Manager) MatchValue(value string, column int, field string) (string, bool, error) {
	indexed, err := m.IndexedValue(field)
	if err != nil {
		return "", false, err
	}
	looked, found, err := m.LookupValue(value, column)
	if err != nil || !found {
		return "", false, err
	}
	if strings.EqualFold(looked, indexed) {
		return "", false, nil
	}
	return fmt.Sprintf("Indexed value %s does not match the value in the lookup list %s", indexed, looked), true, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &LoadError{Path: path, Line: line, Cause: err}
		}
		if len(records) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], bom)
		}
		records = append(records, rec)
	}
	return records, nil
}
