package batch

import (
	"strings"

	"formzone-hq/indexer/pkg/comments"
	"formzone-hq/indexer/pkg/rowstore"
)

// ChecklistItem is one comment awaiting QC review.
type ChecklistItem struct {
	Row      int              `json:"row"`
	TiffPath string           `json:"tiff_path,omitempty"`
	Comment  comments.Comment `json:"comment"`
}

// Checklist returns every comment with text in the store, ordered by row,
// then page, then field. A negative row lists the whole batch; otherwise only
// that row is listed.
func Checklist(store *rowstore.Store, row int) []ChecklistItem {
	first, last := 0, store.RowCount()-1
	if row >= 0 {
		first, last = row, row
	}

	var items []ChecklistItem
	for r := first; r <= last; r++ {
		cell, ok := store.Comments(r)
		if !ok {
			continue
		}
		tiff, _ := store.TiffPath(r)
		for _, c := range comments.Parse(cell).All() {
			if strings.TrimSpace(c.Text) == "" {
				continue
			}
			items = append(items, ChecklistItem{Row: r, TiffPath: tiff, Comment: c})
		}
	}
	return items
}
