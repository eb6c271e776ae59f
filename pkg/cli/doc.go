/*
Package cli provides command-line helpers for the formzone command.

Output Formatting:

Commands print either human-readable text or JSON, chosen with --format:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, summary); err != nil {
		return err
	}

Tables and status lines render text output:

	tbl := cli.NewTable("Row", "Page", "Field", "Message")
	tbl.Row(3, 1, "Email", "Invalid email address: x")
	fmt.Println(tbl)
	cli.PrintStatus(os.Stdout, cli.StatusFail, "%d failure(s)", 1)

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "Validating")
	progress.Start(rows)
	// ...
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

Exit codes distinguish a batch with failures (2) from a broken run (1) and
an interrupted one (130); see ExitCode.
*/
package cli
