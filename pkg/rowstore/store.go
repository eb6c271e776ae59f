// Package rowstore holds a batch's output CSV in memory: one row per scanned
// document, a tiff_path column first, one column per layout field and a
// trailing Comments column. Writes go back to disk either directly with Save
// or deferred through a SaveQueue.
package rowstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"formzone-hq/indexer/pkg/pathutil"
)

const (
	// PathColumn is the first column of every output CSV.
	PathColumn = "tiff_path"

	// CommentsColumn is the last column of every output CSV.
	CommentsColumn = "Comments"
)

// legacy first-column names accepted as a header row.
var legacyPathHeaders = map[string]bool{"tiff_path": true, "path": true, "file": true}

// Store is an in-memory output CSV. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	path       string
	dir        string
	header     []string
	columns    map[string]int
	fieldNames []string
	rows       [][]string
}

// Load reads the CSV at csvPath and normalises it to the header
// tiff_path + fieldNames + Comments. A missing header row is inserted, an
// existing one is replaced, and every data row is padded or truncated to
// the header width.
func Load(csvPath string, fieldNames []string) (*Store, error) {
	records, err := readCSV(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load output csv: %w", err)
	}

	header := make([]string, 0, len(fieldNames)+2)
	header = append(header, PathColumn)
	header = append(header, fieldNames...)
	header = append(header, CommentsColumn)

	if len(records) > 0 && isHeader(records[0], header) {
		records = records[1:]
	}

	width := len(header)
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, width)
		copy(row, rec)
		rows[i] = row
	}

	abs, err := filepath.Abs(csvPath)
	if err != nil {
		abs = csvPath
	}

	s := &Store{
		path:       csvPath,
		dir:        filepath.Dir(abs),
		header:     header,
		columns:    make(map[string]int, width),
		fieldNames: append([]string(nil), fieldNames...),
		rows:       rows,
	}
	for i, name := range header {
		if _, dup := s.columns[name]; !dup {
			s.columns[name] = i
		}
	}
	return s, nil
}

// isHeader reports whether first looks like a header row: its first three
// cells match the expected header ignoring case, or its first cell is a known
// path column name.
func isHeader(first, expected []string) bool {
	if len(first) == 0 {
		return false
	}
	n := min(3, len(first), len(expected))
	match := true
	for i := 0; i < n; i++ {
		if !strings.EqualFold(strings.TrimSpace(first[i]), strings.TrimSpace(expected[i])) {
			match = false
			break
		}
	}
	if match {
		return true
	}
	return legacyPathHeaders[strings.ToLower(strings.TrimSpace(first[0]))]
}

// Path returns the CSV file path.
func (s *Store) Path() string { return s.path }

// Header returns a copy of the header row.
func (s *Store) Header() []string {
	return append([]string(nil), s.header...)
}

// FieldNames returns the layout field names in column order.
func (s *Store) FieldNames() []string {
	return append([]string(nil), s.fieldNames...)
}

// RowCount returns the number of data rows.
func (s *Store) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Value returns the cell of field in row. The boolean is false for an unknown
// field or row.
func (s *Store) Value(row int, field string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.columns[field]
	if !ok || row < 0 || row >= len(s.rows) {
		return "", false
	}
	return s.rows[row][col], true
}

// SetValue replaces the cell of field in row.
func (s *Store) SetValue(row int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.columns[field]
	if !ok {
		return &UnknownFieldError{Field: field}
	}
	if row < 0 || row >= len(s.rows) {
		return &RowRangeError{Row: row, Rows: len(s.rows)}
	}
	s.rows[row][col] = value
	return nil
}

// RowValues returns the layout field values of row.
func (s *Store) RowValues(row int) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if row < 0 || row >= len(s.rows) {
		return nil, &RowRangeError{Row: row, Rows: len(s.rows)}
	}
	values := make(map[string]string, len(s.fieldNames))
	for _, name := range s.fieldNames {
		values[name] = s.rows[row][s.columns[name]]
	}
	return values, nil
}

// Comments returns the Comments cell of row.
func (s *Store) Comments(row int) (string, bool) {
	return s.Value(row, CommentsColumn)
}

// SetComments replaces the Comments cell of row.
func (s *Store) SetComments(row int, cell string) error {
	return s.SetValue(row, CommentsColumn, cell)
}

// TiffPath returns the tiff_path cell of row.
func (s *Store) TiffPath(row int) (string, bool) {
	return s.Value(row, PathColumn)
}

// AbsoluteTiffPath resolves the tiff_path of row against the CSV's folder,
// accepting either separator and ignoring case on disk.
func (s *Store) AbsoluteTiffPath(row int) (string, bool) {
	rel, ok := s.TiffPath(row)
	if !ok || rel == "" {
		return "", false
	}
	p := pathutil.Normalize(rel)
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.dir, p)
	}
	return pathutil.ResolveOrOriginal(p), true
}

// RowIndexForPath returns the data row whose tiff_path equals tiff ignoring
// case, or -1.
func (s *Store) RowIndexForPath(tiff string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, row := range s.rows {
		if pathutil.Equal(row[0], tiff) {
			return i
		}
	}
	return -1
}

// Snapshot returns a deep copy of the header and data rows, ready to write.
func (s *Store) Snapshot() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]string, 0, len(s.rows)+1)
	out = append(out, append([]string(nil), s.header...))
	return append(out, copyRows(s.rows)...)
}

// Save writes the store to its path synchronously.
func (s *Store) Save() error {
	if err := writeCSV(s.path, s.Snapshot()); err != nil {
		return fmt.Errorf("failed to save output csv: %w", err)
	}
	return nil
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
