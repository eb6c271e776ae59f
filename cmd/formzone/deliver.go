package main

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/batch"
	"formzone-hq/indexer/pkg/cli"
)

var deliverFlags struct {
	job            string
	out            string
	dataFile       string
	exceptionsFile string
}

var deliverCmd = &cobra.Command{
	Use:   "deliver [CSV...]",
	Short: "Split batches into a data file and an exceptions file",
	Long: `Write the documents of one or more batches to <job>.csv when they carry no
QC comments and to <job>_exceptions.csv when they do. Numeric fields are
written bare and every other non-empty cell is double-quoted.

Without arguments the project's output CSV is delivered. The job name
defaults to the folder holding the batch folders, and the files are written
to <that folder>/_deliveries/<job>/.

Examples:
  formzone deliver
  formzone deliver --job census-2024 ./batch1/index.csv ./batch2/index.csv`,
	RunE: withApp(true, runDeliver),
}

func init() {
	rootCmd.AddCommand(deliverCmd)

	deliverCmd.Flags().StringVar(&deliverFlags.job, "job", "", "job name (default: name of the batches folder)")
	deliverCmd.Flags().StringVarP(&deliverFlags.out, "out", "o", "", "output folder (default: <batches folder>/_deliveries/<job>)")
	deliverCmd.Flags().StringVar(&deliverFlags.dataFile, "data-file", "", "data file name (default: <job>.csv)")
	deliverCmd.Flags().StringVar(&deliverFlags.exceptionsFile, "exceptions-file", "", "exceptions file name (default: <job>_exceptions.csv)")
}

func runDeliver(cmd *cobra.Command, a *app, args []string) error {
	stores, err := a.batches(args)
	if err != nil {
		return err
	}

	root := batchRoot(stores[0].Path())
	job := deliverFlags.job
	if job == "" {
		job = filepath.Base(root)
	}
	out := deliverFlags.out
	if out == "" {
		out = filepath.Join(root, "_deliveries", job)
	}

	result, err := batch.Deliver(stores, batch.DeliveryConfig{
		JobName:        job,
		OutputDir:      out,
		DataFile:       deliverFlags.dataFile,
		ExceptionsFile: deliverFlags.exceptionsFile,
		NumericFields:  a.layout.NumericFields(a.project.FieldTypes),
	})
	if err != nil {
		return err
	}
	a.log.Info("batches delivered", "job", job, "clean", result.Clean, "exceptions", result.Exceptions)

	return a.emit(result, func(w io.Writer) error {
		cli.PrintStatus(w, cli.StatusOK, "Wrote %d document(s) to %s.", result.Clean, result.DataPath)
		status := cli.StatusOK
		if result.Exceptions > 0 {
			status = cli.StatusWarn
		}
		cli.PrintStatus(w, status, "Wrote %d document(s) with comments to %s.", result.Exceptions, result.ExceptionsPath)
		return nil
	})
}

// batchRoot is the folder holding a batch's folder: the parent of the folder
// containing csvPath.
func batchRoot(csvPath string) string {
	abs, err := filepath.Abs(csvPath)
	if err != nil {
		abs = csvPath
	}
	return filepath.Dir(filepath.Dir(abs))
}
