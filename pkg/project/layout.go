package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"formzone-hq/indexer/pkg/pathutil"
)

// Zone is one field drawn on a page template by the designer.
type Zone struct {
	Name   string  `json:"name"`
	Type   string  `json:"type,omitempty"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout is the field order and page mapping of a project.
type Layout struct {
	// FieldNames are the unique field names in page then zone order.
	FieldNames []string

	// FieldToPage maps each field to the first page it appears on.
	FieldToPage map[string]int

	// ZoneTypes maps each field to the zone type of its first zone, when
	// the designer recorded one.
	ZoneTypes map[string]string

	// Pages is the number of page files read.
	Pages int

	// Skipped holds pages that exist but could not be parsed.
	Skipped []error
}

// LoadLayout reads 1.json, 2.json, ... from jsonFolder until the first
// missing page. File names are matched ignoring case. A page that cannot be
// parsed is recorded in Skipped and contributes no fields.
func LoadLayout(jsonFolder string) (*Layout, error) {
	dir, ok := pathutil.Resolve(jsonFolder)
	if !ok {
		return nil, fmt.Errorf("%w: layout folder %s", ErrNotFound, jsonFolder)
	}

	layout := &Layout{FieldToPage: make(map[string]int), ZoneTypes: make(map[string]string)}
	for page := 1; ; page++ {
		path, ok := pathutil.FindFile(dir, strconv.Itoa(page)+".json")
		if !ok {
			break
		}
		layout.Pages = page

		zones, err := readZones(path)
		if err != nil {
			layout.Skipped = append(layout.Skipped, err)
			continue
		}
		for _, z := range zones {
			if z.Name == "" {
				continue
			}
			if _, seen := layout.FieldToPage[z.Name]; seen {
				continue
			}
			layout.FieldToPage[z.Name] = page
			if z.Type != "" {
				layout.ZoneTypes[z.Name] = z.Type
			}
			layout.FieldNames = append(layout.FieldNames, z.Name)
		}
	}
	return layout, nil
}

// numericZoneTypes are the designer zone types that hold numbers. Older
// designers write IntegerField as "IngerField".
var numericZoneTypes = map[string]bool{
	"integerfield":      true,
	"ingerfield":        true,
	"decimalfield":      true,
	"numericradiogroup": true,
}

// NumericFields returns the fields whose zone type holds numbers, together
// with the fields typed integer or decimal in fieldTypes.
func (l *Layout) NumericFields(fieldTypes map[string]string) map[string]bool {
	out := make(map[string]bool)
	for field, typ := range l.ZoneTypes {
		if numericZoneTypes[strings.ToLower(typ)] {
			out[field] = true
		}
	}
	for field, typ := range fieldTypes {
		switch strings.ToLower(typ) {
		case "integer", "decimal":
			out[field] = true
		}
	}
	return out
}

func readZones(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var zones []Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return zones, nil
}
