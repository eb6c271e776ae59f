package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/cli"
	"formzone-hq/indexer/pkg/history"
)

var historyFlags struct {
	project   string
	kind      string
	since     time.Duration
	limit     int
	olderThan time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune recorded validation runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Long: `List recorded validation runs, newest first.

Examples:
  formzone history list --since 24h
  formzone history list --project census --kind batch --limit 10`,
	Args: cobra.NoArgs,
	RunE: withApp(false, runHistoryList),
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show the failures recorded for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(false, runHistoryShow),
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Long: `Delete runs older than --older-than, or older than history.retention_days
when the flag is not set.`,
	Args: cobra.NoArgs,
	RunE: withApp(false, runHistoryPrune),
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.project, "project-name", "", "only runs of this project")
	historyListCmd.Flags().StringVar(&historyFlags.kind, "kind", "", "only runs of this kind (document or batch)")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "maximum number of runs")

	historyPruneCmd.Flags().DurationVar(&historyFlags.olderThan, "older-than", 0, "delete runs started before now minus this duration")
}

func runHistoryList(cmd *cobra.Command, a *app, args []string) error {
	if err := a.openHistory(true); err != nil {
		return err
	}
	if historyFlags.kind != "" && historyFlags.kind != history.KindDocument && historyFlags.kind != history.KindBatch {
		return cli.NewConfigError("kind", fmt.Sprintf("must be %q or %q", history.KindDocument, history.KindBatch))
	}

	q := history.Query{
		Project: historyFlags.project,
		Kind:    historyFlags.kind,
		Limit:   historyFlags.limit,
	}
	if historyFlags.since > 0 {
		since := time.Now().Add(-historyFlags.since)
		q.Since = &since
	}

	runs, err := a.history.Runs(cmd.Context(), q)
	if err != nil {
		return err
	}

	return a.emit(runs, func(w io.Writer) error {
		if len(runs) == 0 {
			cli.PrintStatus(w, cli.StatusOK, "No runs recorded.")
			return nil
		}
		tbl := cli.NewTable("Run", "Kind", "Project", "Started", "Documents", "Failures", "Duration")
		tbl.AlignRight(5, 6, 7)
		for _, r := range runs {
			tbl.Row(r.ID, r.Kind, r.Project, r.Started.Local().Format(time.DateTime), r.Documents, r.Failures, r.Duration().Round(time.Millisecond))
		}
		fmt.Fprintln(w, tbl)
		return nil
	})
}

func runHistoryShow(cmd *cobra.Command, a *app, args []string) error {
	if err := a.openHistory(true); err != nil {
		return err
	}
	failures, err := a.history.Failures(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return a.emit(failures, func(w io.Writer) error {
		if len(failures) == 0 {
			cli.PrintStatus(w, cli.StatusOK, "No failures recorded for run %s.", args[0])
			return nil
		}
		tbl := cli.NewTable("Row", "Page", "Field", "Message")
		tbl.AlignRight(1, 2)
		for _, f := range failures {
			tbl.Row(f.Row, f.Page, f.Field, f.Message)
		}
		tbl.Footer("", "", "Total", len(failures))
		fmt.Fprintln(w, tbl)
		return nil
	})
}

func runHistoryPrune(cmd *cobra.Command, a *app, args []string) error {
	if err := a.openHistory(true); err != nil {
		return err
	}

	var (
		deleted int64
		err     error
	)
	if historyFlags.olderThan > 0 {
		deleted, err = a.history.Prune(cmd.Context(), time.Now().Add(-historyFlags.olderThan))
	} else {
		if a.cfg.History.RetentionDays <= 0 {
			return cli.NewConfigError("history.retention_days", "no retention period; pass --older-than or set history.retention_days")
		}
		deleted, err = history.NewScheduler(a.history, history.RetentionConfig{
			RetentionDays: a.cfg.History.RetentionDays,
		}, a.log).Prune(cmd.Context())
	}
	if err != nil {
		return err
	}

	result := struct {
		Deleted int64 `json:"deleted"`
	}{deleted}
	return a.emit(result, func(w io.Writer) error {
		cli.PrintStatus(w, cli.StatusOK, "Deleted %d run(s).", deleted)
		return nil
	})
}

