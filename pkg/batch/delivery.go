package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"formzone-hq/indexer/pkg/rowstore"
)

// ErrNothingToDeliver is returned by Deliver when it is given no batches.
var ErrNothingToDeliver = errors.New("no batches to deliver")

// Stats summarises the QC state of one batch.
type Stats struct {
	Path             string `json:"path"`
	Rows             int    `json:"rows"`
	RowsWithComments int    `json:"rows_with_comments"`
	Comments         int    `json:"comments"`
}

// Summarise counts the documents of a batch, the documents with a non-blank
// Comments cell and the non-blank "|"-separated entries across the batch.
// Free text that is not in "P{page}: {field}: {text}" form still counts.
func Summarise(store *rowstore.Store) Stats {
	stats := Stats{Path: store.Path(), Rows: store.RowCount()}
	for row := 0; row < stats.Rows; row++ {
		cell, _ := store.Comments(row)
		if strings.TrimSpace(cell) == "" {
			continue
		}
		stats.RowsWithComments++
		for _, part := range strings.Split(cell, "|") {
			if strings.TrimSpace(part) != "" {
				stats.Comments++
			}
		}
	}
	return stats
}

// DeliveryConfig describes where a delivery is written.
type DeliveryConfig struct {
	// JobName names the output files.
	JobName string

	// OutputDir receives both files. It is created when missing.
	OutputDir string

	// DataFile is the file for documents without comments.
	// Default: <JobName>.csv
	DataFile string

	// ExceptionsFile is the file for documents with comments.
	// Default: <JobName>_exceptions.csv
	ExceptionsFile string

	// NumericFields are written without quotes.
	NumericFields map[string]bool
}

// Delivery is the outcome of Deliver.
type Delivery struct {
	DataPath       string `json:"data_path"`
	ExceptionsPath string `json:"exceptions_path"`
	Clean          int    `json:"clean"`
	Exceptions     int    `json:"exceptions"`
}

// Deliver splits the documents of one or more batches of the same project
// into a data file and an exceptions file. A document goes to the exceptions
// file when its Comments cell is not blank. Fully blank rows are dropped.
//
// Both files start with the first batch's header. Empty cells are written
// empty, numeric fields bare and every other cell double-quoted.
func Deliver(stores []*rowstore.Store, cfg DeliveryConfig) (Delivery, error) {
	if len(stores) == 0 {
		return Delivery{}, ErrNothingToDeliver
	}
	if cfg.JobName == "" || cfg.OutputDir == "" {
		return Delivery{}, errors.New("delivery needs a job name and an output folder")
	}
	if cfg.DataFile == "" {
		cfg.DataFile = cfg.JobName + ".csv"
	}
	if cfg.ExceptionsFile == "" {
		cfg.ExceptionsFile = cfg.JobName + "_exceptions.csv"
	}

	header := stores[0].Header()
	commentsCol := len(header) - 1

	headerLine := strings.Join(header, ",") + "\n"
	var data, exceptions strings.Builder
	data.WriteString(headerLine)
	exceptions.WriteString(headerLine)

	out := Delivery{
		DataPath:       filepath.Join(cfg.OutputDir, cfg.DataFile),
		ExceptionsPath: filepath.Join(cfg.OutputDir, cfg.ExceptionsFile),
	}
	for _, store := range stores {
		rows := store.Snapshot()[1:]
		for _, row := range rows {
			if blankRow(row) {
				continue
			}
			row = fitRow(row, len(header))
			line := formatRow(row, header, cfg.NumericFields)
			if strings.TrimSpace(row[commentsCol]) != "" {
				exceptions.WriteString(line)
				out.Exceptions++
			} else {
				data.WriteString(line)
				out.Clean++
			}
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Delivery{}, fmt.Errorf("failed to create delivery folder: %w", err)
	}
	if err := os.WriteFile(out.DataPath, []byte(data.String()), 0o644); err != nil {
		return Delivery{}, fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.WriteFile(out.ExceptionsPath, []byte(exceptions.String()), 0o644); err != nil {
		return Delivery{}, fmt.Errorf("failed to write exceptions file: %w", err)
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// fitRow pads or truncates row to width cells.
func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func formatRow(row, header []string, numeric map[string]bool) string {
	cells := make([]string, len(row))
	for i, value := range row {
		cells[i] = formatCell(value, header[i], numeric)
	}
	return strings.Join(cells, ",") + "\n"
}

// formatCell writes a numeric value bare unless it holds a separator, quote
// or line break, and quotes everything else.
func formatCell(value, column string, numeric map[string]bool) string {
	if value == "" {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(column)) {
	case "tiff_path", "comments", "comment":
	default:
		if numeric[strings.TrimSpace(column)] && !strings.ContainsAny(value, ",\"\r\n") {
			return value
		}
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
