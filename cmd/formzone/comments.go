package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/batch"
	"formzone-hq/indexer/pkg/cli"
	"formzone-hq/indexer/pkg/comments"
)

var commentsFlags struct {
	row   int
	tiff  string
	page  int
	field string
	text  string
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Review and edit QC comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List QC comments ordered by document, page and field",
	Long: `List the QC comments of the batch, or of one document with --row or --tiff.

Examples:
  formzone comments list
  formzone comments list --row 3 --format json`,
	RunE: withApp(true, runCommentsList),
}

var commentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace the comment on a page and field",
	Long: `Add a comment to a document. A comment already on the same page and field
is replaced.

Example:
  formzone comments add --row 3 --page 2 --field Total --text "Recheck against form"`,
	RunE: withApp(true, runCommentsAdd),
}

var commentsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the comment on a page and field",
	RunE:  withApp(true, runCommentsRemove),
}

var commentsSummaryCmd = &cobra.Command{
	Use:   "summary [CSV...]",
	Short: "Count documents and QC comments per batch",
	Long: `Count the documents of each batch, the documents carrying QC comments and
the comment entries. Without arguments the project's output CSV is counted;
further batches of the same project may be named as arguments.

Example:
  formzone comments summary ./batch1/index.csv ./batch2/index.csv`,
	RunE: withApp(true, runCommentsSummary),
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsRemoveCmd, commentsSummaryCmd)

	commentsCmd.PersistentFlags().IntVarP(&commentsFlags.row, "row", "r", -1, "zero-based document row")
	commentsCmd.PersistentFlags().StringVar(&commentsFlags.tiff, "tiff", "", "TIFF path of the document")

	for _, c := range []*cobra.Command{commentsAddCmd, commentsRemoveCmd} {
		c.Flags().IntVar(&commentsFlags.page, "page", 1, "page number")
		c.Flags().StringVar(&commentsFlags.field, "field", "", "field name")
		_ = c.MarkFlagRequired("field")
	}
	commentsAddCmd.Flags().StringVar(&commentsFlags.text, "text", "", "comment text")
	_ = commentsAddCmd.MarkFlagRequired("text")
}

func runCommentsList(cmd *cobra.Command, a *app, args []string) error {
	row := -1
	if commentsFlags.row >= 0 || commentsFlags.tiff != "" {
		r, err := resolveRow(a, commentsFlags.row, commentsFlags.tiff)
		if err != nil {
			return err
		}
		row = r
	}

	items := batch.Checklist(a.store, row)
	if items == nil {
		items = []batch.ChecklistItem{}
	}
	return a.emit(items, func(w io.Writer) error {
		if len(items) == 0 {
			cli.PrintStatus(w, cli.StatusOK, "There are no QC comments.")
			return nil
		}
		tbl := cli.NewTable("Row", "TIFF", "Page", "Field", "Comment")
		tbl.AlignRight(1, 3)
		for _, it := range items {
			tbl.Row(it.Row, it.TiffPath, it.Comment.Page, it.Comment.Field, it.Comment.Text)
		}
		fmt.Fprintln(w, tbl)
		return nil
	})
}

func runCommentsSummary(cmd *cobra.Command, a *app, args []string) error {
	stores, err := a.batches(args)
	if err != nil {
		return err
	}

	stats := make([]batch.Stats, 0, len(stores))
	for _, store := range stores {
		stats = append(stats, batch.Summarise(store))
	}
	return a.emit(stats, func(w io.Writer) error {
		tbl := cli.NewTable("Batch", "Documents", "With Comments", "Comments")
		tbl.AlignRight(2, 3, 4)
		var total batch.Stats
		for _, s := range stats {
			tbl.Row(s.Path, s.Rows, s.RowsWithComments, s.Comments)
			total.Rows += s.Rows
			total.RowsWithComments += s.RowsWithComments
			total.Comments += s.Comments
		}
		if len(stats) > 1 {
			tbl.Footer("Total", total.Rows, total.RowsWithComments, total.Comments)
		}
		fmt.Fprintln(w, tbl)
		return nil
	})
}

func runCommentsAdd(cmd *cobra.Command, a *app, args []string) error {
	text := strings.TrimSpace(commentsFlags.text)
	if text == "" {
		return cli.NewConfigError("text", "comment text must not be blank")
	}
	return editComments(a, func(cs *comments.Comments, id comments.Identity) (string, error) {
		cs.Add(comments.Comment{Page: id.Page, Field: id.Field, Text: text})
		return fmt.Sprintf("Comment added on %s.", id), nil
	})
}

func runCommentsRemove(cmd *cobra.Command, a *app, args []string) error {
	return editComments(a, func(cs *comments.Comments, id comments.Identity) (string, error) {
		if !cs.Remove(id) {
			return "", fmt.Errorf("no comment on %s", id)
		}
		return fmt.Sprintf("Comment removed from %s.", id), nil
	})
}

// editComments applies edit to one document's Comments cell and saves it.
func editComments(a *app, edit func(*comments.Comments, comments.Identity) (string, error)) error {
	row, err := resolveRow(a, commentsFlags.row, commentsFlags.tiff)
	if err != nil {
		return err
	}
	if commentsFlags.page < 1 {
		return cli.NewConfigError("page", "page numbers start at 1")
	}
	id := comments.Identity{Page: commentsFlags.page, Field: strings.TrimSpace(commentsFlags.field)}

	cell, ok := a.store.Comments(row)
	if !ok {
		return fmt.Errorf("row %d is out of range (%d documents)", row, a.store.RowCount())
	}
	cs := comments.Parse(cell)
	msg, err := edit(cs, id)
	if err != nil {
		return err
	}

	cell = cs.String()
	if err := a.store.SetComments(row, cell); err != nil {
		return err
	}
	if err := a.queue.EnqueueStore(a.store); err != nil {
		return err
	}

	result := struct {
		Row      int    `json:"row"`
		Comments string `json:"comments"`
	}{row, cell}
	return a.emit(result, func(w io.Writer) error {
		cli.PrintStatus(w, cli.StatusOK, "%s", msg)
		return nil
	})
}
