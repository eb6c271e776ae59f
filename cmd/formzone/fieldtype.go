package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/cli"
	"formzone-hq/indexer/pkg/fieldtype"
)

var fieldtypeCmd = &cobra.Command{
	Use:   "fieldtype",
	Short: "Check values against field types",
}

var fieldtypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known field types",
	Args:  cobra.NoArgs,
	RunE:  withApp(false, runFieldtypeList),
}

var fieldtypeCheckCmd = &cobra.Command{
	Use:   "check TYPE VALUE",
	Short: "Check one value against a field type",
	Long: `Check one value against a field type and print the first failing test.

Examples:
  formzone fieldtype check eircode "D02 X285"
  formzone fieldtype check irish_mobile 0871234567`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(false, runFieldtypeCheck),
}

func init() {
	rootCmd.AddCommand(fieldtypeCmd)
	fieldtypeCmd.AddCommand(fieldtypeListCmd, fieldtypeCheckCmd)
}

func runFieldtypeList(cmd *cobra.Command, a *app, args []string) error {
	types := fieldtype.Types()
	return a.emit(types, func(w io.Writer) error {
		for _, t := range types {
			fmt.Fprintln(w, t)
		}
		return nil
	})
}

func runFieldtypeCheck(cmd *cobra.Command, a *app, args []string) error {
	v, err := fieldtype.ForType(args[0])
	if err != nil {
		return err
	}
	failed := v.FirstFailure(args[1])

	result := struct {
		Type   string `json:"type"`
		Value  string `json:"value"`
		Valid  bool   `json:"valid"`
		Failed string `json:"failed_test,omitempty"`
	}{args[0], args[1], failed == "", failed}

	err = a.emit(result, func(w io.Writer) error {
		if failed == "" {
			cli.PrintStatus(w, cli.StatusOK, "%q is a valid %s.", args[1], args[0])
		} else {
			cli.PrintStatus(w, cli.StatusFail, "%q is not a valid %s (%s).", args[1], args[0], failed)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed != "" {
		return cli.ErrFailuresFound
	}
	return nil
}
