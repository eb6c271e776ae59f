package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"formzone-hq/indexer/pkg/batch"
	"formzone-hq/indexer/pkg/cli"
	"formzone-hq/indexer/pkg/config"
	"formzone-hq/indexer/pkg/history"
	"formzone-hq/indexer/pkg/pathutil"
	"formzone-hq/indexer/pkg/telemetry/health"
	"formzone-hq/indexer/pkg/watch"
)

var watchFlags struct {
	initial bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the batch whenever the project changes",
	Long: `Validate the batch, then watch the project's json/ folder, its lookup list and
the config file, and validate again after each change. The output CSV itself
is not watched.

When telemetry.metrics.enabled is set the Prometheus endpoint is served for
as long as the command runs, together with /health, /ready and /version
endpoints. History pruning runs on history.prune_schedule.

Example:
  formzone watch --project ./census --csv ./batch1/index.csv`,
	Args: cobra.NoArgs,
	RunE: withApp(true, runWatch),
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchFlags.initial, "initial", true, "validate the batch once before watching")
}

func runWatch(cmd *cobra.Command, a *app, args []string) error {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// Serializes reloads with each other and with the initial run.
	var mu sync.Mutex
	validate := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		summary, err := a.validator().ValidateBatch(ctx)
		switch {
		case errors.Is(err, batch.ErrNoValidations):
			a.log.Warn("project has no validation rules; waiting for changes")
			return nil
		case errors.Is(err, batch.ErrNoRows):
			a.log.Warn("output csv has no rows; waiting for changes", "csv", a.store.Path())
			return nil
		case err != nil && !summary.Cancelled:
			return err
		}
		cli.PrintStatus(a.errOut, statusFor(summary), "Validated %d document(s), %d failure(s).", summary.Documents, summary.Failures)
		return nil
	}

	if watchFlags.initial {
		if err := validate(ctx); err != nil {
			return err
		}
	}

	wc := watch.ForProject(a.projectFolder, a.project, a.cfg.Watch.Debounce)
	if path := config.Path(); path != "" {
		wc.Files = append(wc.Files, pathutil.ResolveOrOriginal(path))
	}
	w, err := watch.New(wc, a.log)
	if err != nil {
		return err
	}
	defer w.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Telemetry.Metrics.Enabled && a.cfg.Telemetry.Metrics.ListenAddress != "" {
		checker := a.healthChecker()
		info := health.VersionInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}
		g.Go(func() error {
			err := a.metrics.Serve(gctx, a.log, func(mux *http.ServeMux) {
				health.Mount(mux, checker, info)
			})
			if err != nil {
				return fmt.Errorf("metrics endpoint: %w", err)
			}
			return nil
		})
	}

	if a.history != nil {
		scheduler := history.NewScheduler(a.history, history.RetentionConfig{
			RetentionDays: a.cfg.History.RetentionDays,
			PruneSchedule: a.cfg.History.PruneSchedule,
		}, a.log)
		if err := scheduler.Start(gctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	g.Go(func() error {
		return w.Watch(gctx, func() error {
			mu.Lock()
			err := a.reload(gctx)
			mu.Unlock()
			if err != nil {
				return err
			}
			return validate(gctx)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// healthChecker registers readiness checks for the open project.
func (a *app) healthChecker() *health.Checker {
	checker := health.New(2 * time.Second)
	checker.RegisterCheck("output_csv", health.FileCheck(a.store.Path()))
	checker.RegisterCheck("lookup", func(ctx context.Context) error {
		if st := a.lookupState.Load(); st != nil {
			return st.err
		}
		return nil
	})
	if a.history != nil {
		checker.RegisterCheck("history", health.HistoryCheck(a.history))
	}
	return checker
}

func statusFor(s batch.Summary) cli.Status {
	switch {
	case s.Cancelled:
		return cli.StatusWarn
	case s.Failures > 0:
		return cli.StatusFail
	default:
		return cli.StatusOK
	}
}
