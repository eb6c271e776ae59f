// Package watch re-runs a callback when a project's configuration changes on
// disk: the page layouts and project_config.json in the json/ folder, and the
// lookup list CSV.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrAlreadyRunning is returned when Watch is called twice.
var ErrAlreadyRunning = errors.New("watcher already running")

// Config contains configuration for the watcher.
type Config struct {
	// Dirs are folders whose matching files trigger a reload. They are not
	// watched recursively.
	Dirs []string

	// Files are single files that trigger a reload. Their parent folder is
	// watched so that editors replacing the file are still seen.
	Files []string

	// DebounceInterval is the quiet period after the last event before the
	// callback runs.
	// Default: 500ms
	DebounceInterval time.Duration

	// Extensions limits which files in Dirs are considered.
	// Default: .json, .csv
	Extensions []string

	// SkipHidden ignores dot files.
	SkipHidden bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 500 * time.Millisecond,
		Extensions:       []string{".json", ".csv"},
		SkipHidden:       true,
	}
}

// Watcher watches project files and triggers reloads, debouncing bursts of
// events such as an editor's write-rename-chmod sequence.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *Debouncer

	dirs  map[string]struct{}
	files map[string]struct{}

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a watcher.
func New(config *Config, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "watch"),
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		dirs:     make(map[string]struct{}),
		files:    make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	return w, nil
}

// Watch blocks until ctx is cancelled or Stop is called, running onReload
// after each debounced burst of relevant events. Reload errors are logged and
// watching continues.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.addPaths(); err != nil {
		return err
	}

	w.logger.Info("watching project files",
		"dirs", w.config.Dirs,
		"files", w.config.Files,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", "reason", ctx.Err())
			return nil

		case <-w.stopCh:
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

			name := event.Name
			w.debounce.Trigger(func() {
				w.logger.Info("project files changed, reloading", "path", name)
				if err := onReload(); err != nil {
					w.logger.Error("reload failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop stops watching, cancels any pending reload and releases the
// underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			<-w.doneCh
		}

		w.debounce.Stop()
		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

func (w *Watcher) addPaths() error {
	for _, dir := range w.config.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if err := w.add(abs); err != nil {
			return err
		}
		w.dirs[abs] = struct{}{}
	}

	for _, file := range w.config.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		if err := w.add(filepath.Dir(abs)); err != nil {
			return err
		}
		w.files[strings.ToLower(abs)] = struct{}{}
	}
	return nil
}

func (w *Watcher) add(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to watch %q: not a directory", dir)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}
	w.logger.Debug("watching directory", "path", dir)
	return nil
}

// shouldProcessEvent reports whether event concerns a watched file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	if _, ok := w.files[strings.ToLower(abs)]; ok {
		return true
	}

	base := filepath.Base(abs)
	if w.config.SkipHidden && strings.HasPrefix(base, ".") {
		return false
	}
	if _, ok := w.dirs[filepath.Dir(abs)]; !ok {
		return false
	}
	return w.hasValidExtension(strings.ToLower(filepath.Ext(base)))
}

func (w *Watcher) hasValidExtension(ext string) bool {
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// Debouncer collects rapid events and runs only the latest callback after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewDebouncer creates a debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger records callback and restarts the quiet period.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.stopCh:
		return
	default:
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
