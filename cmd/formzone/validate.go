package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/batch"
	"formzone-hq/indexer/pkg/cli"
)

var validateFlags struct {
	row      int
	tiff     string
	strict   bool
	progress bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run project validations and record failures as comments",
	Long: `Run the project's validation rules over the batch output CSV.

Each failure is written into the document's Comments cell as
"P{page}: {field}: {message}", replacing any earlier comment on the same
page and field. The CSV is saved only when there were failures.`,
}

var validateDocumentCmd = &cobra.Command{
	Use:   "document",
	Short: "Validate one document",
	Long: `Validate one document of the batch, selected by row or by TIFF path.

Examples:
  # Validate the fourth document (rows are zero-based)
  formzone validate document --row 3

  # Validate by TIFF path, ignoring case
  formzone validate document --tiff scans/0004.tif`,
	RunE: withApp(true, runValidateDocument),
}

var validateBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Validate every document of the batch",
	Long: `Validate every document of the batch.

Interrupting the run (Ctrl-C) stops after the current document; comments
already written are kept and saved.

Examples:
  formzone validate batch --project ./census --csv ./batch1/index.csv
  formzone validate batch --format json --strict`,
	RunE: withApp(true, runValidateBatch),
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.AddCommand(validateDocumentCmd, validateBatchCmd)

	validateCmd.PersistentFlags().BoolVar(&validateFlags.strict, "strict", false, "exit with status 2 when failures are found")

	validateDocumentCmd.Flags().IntVarP(&validateFlags.row, "row", "r", -1, "zero-based document row")
	validateDocumentCmd.Flags().StringVar(&validateFlags.tiff, "tiff", "", "TIFF path of the document")

	validateBatchCmd.Flags().BoolVar(&validateFlags.progress, "progress", true, "show a progress bar on a terminal")
}

func runValidateDocument(cmd *cobra.Command, a *app, args []string) error {
	row, err := resolveRow(a, validateFlags.row, validateFlags.tiff)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	result, err := a.validator().ValidateDocument(ctx, row)
	if err != nil {
		return err
	}

	err = a.emit(result, func(w io.Writer) error {
		if len(result.Failures) == 0 {
			cli.PrintStatus(w, cli.StatusOK, "No validation failures found.")
			return nil
		}
		fmt.Fprintln(w, failureTable([]batch.Result{result}))
		cli.PrintStatus(w, cli.StatusFail, "Validated 1 document. %d validation failure(s) added as comments.", len(result.Failures))
		return nil
	})
	if err != nil {
		return err
	}
	return strictResult(len(result.Failures))
}

func runValidateBatch(cmd *cobra.Command, a *app, args []string) error {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	var opts []batch.Option
	if validateFlags.progress && a.format == cli.FormatText && isTerminal(a.errOut) {
		progress := cli.NewProgressReporter(a.errOut, "Validating")
		progress.Start(a.store.RowCount())
		defer progress.Finish()
		opts = append(opts, batch.WithProgress(func(done, _ int) { progress.Update(done) }))
	}

	summary, runErr := a.validator(opts...).ValidateBatch(ctx)
	if runErr != nil && !summary.Cancelled {
		return runErr
	}

	err := a.emit(summary, func(w io.Writer) error {
		if summary.Failures > 0 {
			fmt.Fprintln(w, failureTable(summary.Rows))
		}
		switch {
		case summary.Cancelled:
			cli.PrintStatus(w, cli.StatusWarn, "Cancelled after %d document(s). %d validation failure(s) added as comments.", summary.Documents, summary.Failures)
		case summary.Failures > 0:
			cli.PrintStatus(w, cli.StatusFail, "Validated %d document(s). %d validation failure(s) added as comments.", summary.Documents, summary.Failures)
		default:
			cli.PrintStatus(w, cli.StatusOK, "Validated %d document(s). No validation failures found.", summary.Documents)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return strictResult(summary.Failures)
}

// resolveRow picks the document row from --row or --tiff.
func resolveRow(a *app, row int, tiff string) (int, error) {
	if tiff != "" {
		idx := a.store.RowIndexForPath(tiff)
		if idx < 0 {
			return 0, fmt.Errorf("no document with tiff path %q in %s", tiff, a.store.Path())
		}
		return idx, nil
	}
	if row < 0 {
		return 0, cli.NewConfigError("row", "pass --row or --tiff")
	}
	return row, nil
}

func strictResult(failures int) error {
	if validateFlags.strict && failures > 0 {
		return cli.ErrFailuresFound
	}
	return nil
}

func failureTable(results []batch.Result) *cli.Table {
	tbl := cli.NewTable("Row", "TIFF", "Page", "Field", "Message")
	tbl.AlignRight(1, 3)
	total := 0
	for _, r := range results {
		for _, f := range r.Failures {
			tbl.Row(r.Row, r.TiffPath, f.Page, f.Field, f.Message)
			total++
		}
	}
	tbl.Footer("", "", "", "Total", total)
	return tbl
}
