package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"formzone-hq/indexer/pkg/lookup"
	"formzone-hq/indexer/pkg/pathutil"
	"formzone-hq/indexer/pkg/project"
)

// Recorder observes rule and row evaluations. pkg/telemetry/metrics provides
// a Prometheus implementation.
type Recorder interface {
	// RecordRule is called once per evaluated rule.
	RecordRule(strategy string, failures int, d time.Duration, err error)

	// RecordRun is called once per validated row.
	RecordRun(rowIndex, failures int, d time.Duration)
}

// LookupLoader builds a lookup manager from a resolved lookup list path.
type LookupLoader func(lookupPath, outputCSV string, primeIndex int) (*lookup.Manager, error)

// Option configures a ProjectValidations.
type Option func(*ProjectValidations)

// WithConfigFolder sets the folder relative lookup_list paths are resolved against.
func WithConfigFolder(dir string) Option {
	return func(pv *ProjectValidations) { pv.configFolder = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pv *ProjectValidations) {
		if logger != nil {
			pv.logger = logger
		}
	}
}

// WithRegistry replaces the strategy registry.
func WithRegistry(r Registry) Option {
	return func(pv *ProjectValidations) {
		if r != nil {
			pv.registry = r
		}
	}
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(pv *ProjectValidations) { pv.recorder = r }
}

// WithLookupLoader replaces how the lookup manager is built.
func WithLookupLoader(fn LookupLoader) Option {
	return func(pv *ProjectValidations) {
		if fn != nil {
			pv.loadLookup = fn
		}
	}
}

// ProjectValidations runs a project's declared rules against document rows.
// It is not safe for concurrent use.
type ProjectValidations struct {
	project      *project.Config
	outputCSV    string
	configFolder string
	rules        []project.Rule

	registry   Registry
	loadLookup LookupLoader
	lookup     *lookup.Manager
	lookupErr  error

	recorder Recorder
	logger   *slog.Logger
}

// New builds a ProjectValidations for cfg. It never fails: problems loading
// the lookup list are logged and reported by LookupError, and the
// lookup-based strategies become no-ops.
func New(cfg *project.Config, outputCSV string, opts ...Option) *ProjectValidations {
	pv := &ProjectValidations{
		project:    cfg,
		outputCSV:  outputCSV,
		registry:   DefaultRegistry(),
		loadLookup: lookup.New,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(pv)
	}
	pv.logger = pv.logger.With("component", "validation")

	if cfg != nil {
		pv.rules = cfg.Validations
		pv.initLookup()
	}
	return pv
}

func (pv *ProjectValidations) initLookup() {
	path := pv.project.LookupList
	if path == "" {
		return
	}
	path = pathutil.Normalize(path)
	if !filepath.IsAbs(path) && pv.configFolder != "" {
		path = filepath.Join(pv.configFolder, path)
	}

	resolved, ok := pathutil.Resolve(path)
	if !ok {
		pv.lookupErr = &LookupLoadError{Path: path, Cause: os.ErrNotExist}
		pv.logger.Warn("lookup list not found, lookup rules disabled", "path", path)
		return
	}

	manager, err := pv.loadLookup(resolved, pv.outputCSV, pv.project.LookupPrimeIndex)
	if err != nil {
		pv.lookupErr = &LookupLoadError{Path: resolved, Cause: err}
		pv.logger.Warn("failed to load lookup list, lookup rules disabled",
			"path", resolved,
			"error", err,
		)
		return
	}
	pv.lookup = manager
}

// Lookup returns the lookup manager, nil when none is available.
func (pv *ProjectValidations) Lookup() *lookup.Manager { return pv.lookup }

// LookupError returns why the configured lookup list is unavailable, or nil.
func (pv *ProjectValidations) LookupError() error { return pv.lookupErr }

// HasRules reports whether the project declares any rule.
func (pv *ProjectValidations) HasRules() bool { return len(pv.rules) > 0 }

// Rules returns the declared rules.
func (pv *ProjectValidations) Rules() []project.Rule { return pv.rules }

// Registry returns the strategy registry in use.
func (pv *ProjectValidations) Registry() Registry { return pv.registry }

// ReloadOutput refreshes the lookup manager's copy of the output CSV so that
// match rules compare against what is currently on disk.
func (pv *ProjectValidations) ReloadOutput() error {
	if pv.lookup == nil {
		return nil
	}
	if err := pv.lookup.LoadOutput(); err != nil {
		return fmt.Errorf("reload output table: %w", err)
	}
	return nil
}

// RunValidations evaluates every declared rule against one row and returns
// at most one failure per (page, field). Earlier rules take precedence.
// Rule errors and panics are logged and the rule contributes nothing.
func (pv *ProjectValidations) RunValidations(rowIndex int, fieldValues Values, fieldToPage map[string]int) []Failure {
	start := time.Now()
	failures := make([]Failure, 0)
	if len(pv.rules) == 0 {
		return failures
	}

	var lk Lookup
	if pv.lookup != nil {
		pv.lookup.SetCurrentRow(rowIndex)
		lk = pv.lookup
	}

	seen := make(map[FailureKey]struct{})
	for i, rule := range pv.rules {
		if rule.Strategy == "" {
			continue
		}
		strategy, ok := pv.registry.Get(rule.Strategy)
		if !ok {
			pv.logger.Warn("skipping rule with unknown strategy",
				"rule", i,
				"strategy", rule.Strategy,
				"error", ErrUnknownStrategy,
			)
			continue
		}

		ctx := &Context{
			FieldValues: fieldValues,
			FieldNames:  rule.FieldNames,
			Params:      Params(rule.Params),
			FieldToPage: fieldToPage,
			Lookup:      lk,
			RowIndex:    rowIndex,
		}

		ruleStart := time.Now()
		found, err := pv.evaluate(strategy, i, ctx)
		if pv.recorder != nil {
			pv.recorder.RecordRule(strategy.Name(), len(found), time.Since(ruleStart), err)
		}
		if err != nil {
			pv.logger.Warn("validation rule failed, ignoring its result",
				"rule", i,
				"strategy", rule.Strategy,
				"row", rowIndex,
				"error", err,
			)
			continue
		}

		for _, f := range found {
			key := f.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			failures = append(failures, f)
		}
	}

	if pv.recorder != nil {
		pv.recorder.RecordRun(rowIndex, len(failures), time.Since(start))
	}
	pv.logger.Debug("row validated", "row", rowIndex, "failures", len(failures))
	return failures
}

// evaluate runs one strategy, converting errors and panics into a StrategyError.
func (pv *ProjectValidations) evaluate(s Strategy, index int, ctx *Context) (failures []Failure, err error) {
	defer func() {
		if r := recover(); r != nil {
			failures = nil
			err = &StrategyError{Strategy: s.Name(), RuleIndex: index, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	failures, err = s.Evaluate(ctx)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), RuleIndex: index, Cause: err}
	}
	return failures, nil
}
