package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"formzone-hq/indexer/pkg/batch"
	"formzone-hq/indexer/pkg/cli"
	"formzone-hq/indexer/pkg/config"
	"formzone-hq/indexer/pkg/history"
	"formzone-hq/indexer/pkg/project"
	"formzone-hq/indexer/pkg/rowstore"
	"formzone-hq/indexer/pkg/telemetry/logging"
	"formzone-hq/indexer/pkg/telemetry/metrics"
	"formzone-hq/indexer/pkg/validation"
)

// app holds the services shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	log     *slog.Logger
	format  cli.OutputFormat
	out     io.Writer
	errOut  io.Writer
	metrics *metrics.Collector
	history history.Storage

	// Set by openProject.
	projectFolder string
	project       *project.Config
	layout        *project.Layout
	store         *rowstore.Store
	pv            *validation.ProjectValidations
	queue         *rowstore.SaveQueue

	// lookupState is read by health checks while watch reloads the project.
	lookupState atomic.Pointer[lookupStatus]
}

type lookupStatus struct {
	err error
}

// newApp loads configuration and logging. Commands that need a project call
// openProject afterwards.
func newApp(cmd *cobra.Command) (*app, error) {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	path := cfgFile
	if path == "" && rowstore.Exists(defaultConfigFile) {
		path = defaultConfigFile
	}
	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError(path, err.Error())
	}
	cfg := config.GetConfig()

	logger, err := newLogger(cfg.Telemetry.Logging, verbose)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		log:     logger.Slog(),
		format:  format,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}
	return a, nil
}

func newLogger(lc config.LoggingConfig, verbose bool) (*logging.Logger, error) {
	patterns := make([]logging.Pattern, 0, len(lc.RedactPatterns))
	for _, p := range lc.RedactPatterns {
		patterns = append(patterns, logging.Pattern{Name: p.Name, Pattern: p.Pattern, Replacement: p.Replacement})
	}

	level := lc.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:          level,
		Format:         lc.Format,
		Output:         lc.Output,
		AddSource:      lc.AddSource,
		RedactPII:      lc.RedactPII,
		RedactPatterns: patterns,
		MaxSizeMB:      lc.MaxSizeMB,
		MaxBackups:     lc.MaxBackups,
		MaxAgeDays:     lc.MaxAgeDays,
	})
}

// openHistory opens the run history store when it is enabled, or when force
// is set for the history commands.
func (a *app) openHistory(force bool) error {
	if a.history != nil || (!a.cfg.History.Enabled && !force) {
		return nil
	}
	storage, err := history.Open(a.cfg.History.Driver, a.cfg.History.Path, a.log)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	a.history = storage
	return nil
}

// openProject loads the project config, layout and output CSV and builds the
// validation engine.
func (a *app) openProject() error {
	folder := projectFolder
	if folder == "" {
		folder = a.cfg.Project.ConfigFolder
	}
	if folder == "" {
		return cli.NewConfigError("project.config_folder", "no project folder; pass --project or set project.config_folder")
	}
	csvPath := outputCSV
	if csvPath == "" {
		csvPath = a.cfg.Project.OutputCSV
	}
	if csvPath == "" {
		return cli.NewConfigError("project.output_csv", "no output csv; pass --csv or set project.output_csv")
	}

	if err := a.loadProject(folder, csvPath); err != nil {
		return err
	}

	a.queue = rowstore.NewSaveQueue(&rowstore.QueueConfig{
		Buffer:       a.cfg.Batch.SaveQueueSize,
		FlushTimeout: a.cfg.Batch.FlushTimeout,
		Logger:       a.log,
		OnError: func(path string, err error) {
			a.metrics.RecordSaveError()
		},
	})

	return a.openHistory(false)
}

// loadProject (re)reads the project and output CSV from disk.
func (a *app) loadProject(folder, csvPath string) error {
	cfg, err := project.LoadFromFolder(folder)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	layout, err := project.LoadLayout(filepath.Join(folder, project.JSONFolder))
	if err != nil {
		return fmt.Errorf("failed to load page layouts: %w", err)
	}
	for _, skipped := range layout.Skipped {
		a.log.Warn("page layout skipped", "error", skipped)
	}

	store, err := rowstore.Load(csvPath, layout.FieldNames)
	if err != nil {
		return err
	}

	pv := validation.New(cfg, csvPath,
		validation.WithConfigFolder(folder),
		validation.WithLogger(a.log),
		validation.WithRecorder(a.metrics),
	)
	a.metrics.SetLookupAvailable(pv.Lookup() != nil)

	st := &lookupStatus{}
	if cfg.HasLookup() && pv.Lookup() == nil {
		st.err = pv.LookupError()
		if st.err == nil {
			st.err = errors.New("lookup list not loaded")
		}
	}
	a.lookupState.Store(st)

	a.projectFolder = folder
	a.project = cfg
	a.layout = layout
	a.store = store
	a.pv = pv
	return nil
}

// reload re-reads formzone.yaml, when one was loaded, and the project. Saves
// still queued from the previous run are written first so that the reloaded
// rows include them.
func (a *app) reload(ctx context.Context) error {
	if config.Path() != "" {
		if err := config.ReloadConfig(); err != nil {
			a.log.Warn("keeping previous configuration", "path", config.Path(), "error", err)
		} else {
			a.cfg = config.GetConfig()
		}
	}

	if err := a.queue.Flush(ctx); err != nil {
		a.log.Warn("pending csv saves not flushed before reload", "error", err)
	}
	return a.loadProject(a.projectFolder, a.store.Path())
}

// batches returns the open output CSV, or the CSVs named in paths loaded with
// the project's layout.
func (a *app) batches(paths []string) ([]*rowstore.Store, error) {
	if len(paths) == 0 {
		return []*rowstore.Store{a.store}, nil
	}
	stores := make([]*rowstore.Store, 0, len(paths))
	for _, path := range paths {
		if path == a.store.Path() {
			stores = append(stores, a.store)
			continue
		}
		store, err := rowstore.Load(path, a.layout.FieldNames)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, nil
}

// validator builds a batch validator over the open project.
func (a *app) validator(opts ...batch.Option) *batch.Validator {
	base := []batch.Option{
		batch.WithFieldToPage(a.layout.FieldToPage),
		batch.WithSaveQueue(a.queue),
		batch.WithRecorder(a.metrics),
		batch.WithLogger(a.log),
	}
	if a.history != nil {
		base = append(base, batch.WithHistory(a.history, filepath.Base(a.projectFolder)))
	}
	if a.cfg.Batch.CheckFieldTypes && len(a.project.FieldTypes) > 0 {
		base = append(base, batch.WithFieldTypes(a.project.FieldTypes))
	}
	return batch.New(a.pv, a.store, append(base, opts...)...)
}

// close flushes pending saves and releases resources.
func (a *app) close() error {
	var errs []error
	if a.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Batch.FlushTimeout)
		if err := a.queue.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pending csv saves: %w", err))
		}
		cancel()
		if err := a.queue.Close(); err != nil {
			errs = append(errs, err)
		}
		if n := a.queue.Errors(); n > 0 {
			errs = append(errs, fmt.Errorf("%d csv save(s) failed; see log", n))
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Shutdown()
	}
	return errors.Join(errs...)
}

// emit writes data as JSON, or calls text for the text format.
func (a *app) emit(data any, text func(w io.Writer) error) error {
	if a.format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(a.out, data)
	}
	return text(a.out)
}

// withApp wraps a command body with app setup and teardown.
func withApp(needProject bool, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		if needProject {
			if err := a.openProject(); err != nil {
				return err
			}
		}
		if err := fn(cmd, a, args); err != nil {
			return cli.NewCommandError(commandName(cmd), err)
		}
		return nil
	}
}

// commandName is the command path without the program name, e.g.
// "validate batch".
func commandName(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
