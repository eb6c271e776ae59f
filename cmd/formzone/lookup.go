package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/cli"
)

var lookupFlags struct {
	column int
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Query the project's lookup list",
}

var lookupGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print a column of the lookup row keyed by KEY",
	Long: `Print one column of the lookup row whose prime-index value is KEY.

Example:
  formzone lookup get 10452 --column 3`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(true, runLookupGet),
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.AddCommand(lookupGetCmd)

	lookupGetCmd.Flags().IntVar(&lookupFlags.column, "column", 0, "zero-based lookup column")
}

func runLookupGet(cmd *cobra.Command, a *app, args []string) error {
	mgr := a.pv.Lookup()
	if mgr == nil {
		if err := a.pv.LookupError(); err != nil {
			return fmt.Errorf("lookup list unavailable: %w", err)
		}
		return errors.New("no lookup list configured for this project")
	}

	key := args[0]
	value, found, err := mgr.LookupValue(key, lookupFlags.column)
	if err != nil {
		return err
	}

	result := struct {
		Key    string `json:"key"`
		Column int    `json:"column"`
		Found  bool   `json:"found"`
		Value  string `json:"value,omitempty"`
	}{key, lookupFlags.column, found, value}

	return a.emit(result, func(w io.Writer) error {
		if !found {
			cli.PrintStatus(w, cli.StatusWarn, "%q is not in the lookup list (%d entries).", key, mgr.Len())
			return nil
		}
		fmt.Fprintln(w, value)
		return nil
	})
}
