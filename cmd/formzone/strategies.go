package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/validation"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the validation strategies rules can name",
	Args:  cobra.NoArgs,
	RunE:  withApp(false, runStrategies),
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, a *app, args []string) error {
	names := validation.DefaultRegistry().Names()
	return a.emit(names, func(w io.Writer) error {
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		return nil
	})
}
