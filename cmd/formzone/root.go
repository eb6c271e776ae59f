package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/cli"
)

// defaultConfigFile is read when --config is not given and it exists.
const defaultConfigFile = "formzone.yaml"

var (
	// Global flags
	cfgFile       string
	verbose       bool
	outputFormat  string
	projectFolder string
	outputCSV     string
)

var rootCmd = &cobra.Command{
	Use:   "formzone",
	Short: "formzone - validation engine for scanned-form capture projects",
	Long: `formzone runs a project's declared validation rules over the rows of a
batch output CSV and records each failure as a QC comment on the document.

Rules are declared in the project's json/project_config.json. They cover
tick-box constraints, lookup-list checks, numeric totals and value formats
such as email addresses, phone numbers and eircodes.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrFailuresFound) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&projectFolder, "project", "p", "", "project folder (overrides project.config_folder)")
	rootCmd.PersistentFlags().StringVar(&outputCSV, "csv", "", "batch output CSV (overrides project.output_csv)")
}
