package watch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"formzone-hq/indexer/pkg/project"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func startWatcher(t *testing.T, cfg *Config) (*Watcher, *atomic.Int32) {
	t.Helper()

	w, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var reloads atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
		_ = w.Stop()
	})

	// Give the watcher time to register its paths.
	time.Sleep(50 * time.Millisecond)
	return w, &reloads
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DebounceInterval != 500*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 500ms", cfg.DebounceInterval)
	}
	if len(cfg.Extensions) != 2 {
		t.Errorf("Extensions count = %d, want 2", len(cfg.Extensions))
	}
	if !cfg.SkipHidden {
		t.Error("SkipHidden = false, want true")
	}
}

func TestWatcher_DirectoryChangeTriggersReload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.json"), `{"fields": []}`)

	cfg := DefaultConfig()
	cfg.Dirs = []string{dir}
	cfg.DebounceInterval = 30 * time.Millisecond
	_, reloads := startWatcher(t, cfg)

	// A burst of writes is debounced into a single reload.
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, "1.json"), `{"fields": [{"name": "Name"}]}`)
	}

	if !waitFor(t, 2*time.Second, func() bool { return reloads.Load() >= 1 }) {
		t.Fatal("Expected a reload after writing 1.json")
	}
	time.Sleep(150 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Errorf("Expected 1 debounced reload, got %d", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Dirs = []string{dir}
	cfg.DebounceInterval = 20 * time.Millisecond
	_, reloads := startWatcher(t, cfg)

	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, ".1.json.swp"), "x")

	time.Sleep(200 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Errorf("Expected no reloads, got %d", got)
	}
}

func TestWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	lookup := filepath.Join(dir, "lookup.csv")
	writeFile(t, lookup, "key,value\n")
	other := filepath.Join(dir, "other.csv")

	cfg := DefaultConfig()
	cfg.Files = []string{lookup}
	cfg.DebounceInterval = 20 * time.Millisecond
	_, reloads := startWatcher(t, cfg)

	writeFile(t, other, "x\n")
	time.Sleep(150 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Fatalf("Expected sibling file to be ignored, got %d reloads", got)
	}

	writeFile(t, lookup, "key,value\nA1,1\n")
	if !waitFor(t, 2*time.Second, func() bool { return reloads.Load() == 1 }) {
		t.Errorf("Expected 1 reload after editing lookup list, got %d", reloads.Load())
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dirs = []string{filepath.Join(t.TempDir(), "missing")}

	w, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch(context.Background(), func() error { return nil }); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestWatcher_AlreadyRunning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dirs = []string{t.TempDir()}
	w, _ := startWatcher(t, cfg)

	if err := w.Watch(context.Background(), func() error { return nil }); err != ErrAlreadyRunning {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := New(nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("first Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestShouldProcessEvent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Config{Dirs: []string{dir}, SkipHidden: true}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.dirs[dir] = struct{}{}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"json write", fsnotify.Event{Name: filepath.Join(dir, "2.json"), Op: fsnotify.Write}, true},
		{"uppercase extension", fsnotify.Event{Name: filepath.Join(dir, "2.JSON"), Op: fsnotify.Create}, true},
		{"chmod only", fsnotify.Event{Name: filepath.Join(dir, "2.json"), Op: fsnotify.Chmod}, false},
		{"hidden", fsnotify.Event{Name: filepath.Join(dir, ".2.json"), Op: fsnotify.Write}, false},
		{"wrong extension", fsnotify.Event{Name: filepath.Join(dir, "2.txt"), Op: fsnotify.Write}, false},
		{"other folder", fsnotify.Event{Name: filepath.Join(dir, "sub", "2.json"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("Expected no callback after Stop, got %d", got)
	}

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("Expected Trigger after Stop to be ignored, got %d", got)
	}
}

func TestForProject(t *testing.T) {
	folder := t.TempDir()

	cfg := ForProject(folder, &project.Config{LookupList: "lookups/people.csv"}, time.Second)

	if cfg.DebounceInterval != time.Second {
		t.Errorf("DebounceInterval = %v, want 1s", cfg.DebounceInterval)
	}
	if len(cfg.Dirs) != 1 || cfg.Dirs[0] != filepath.Join(folder, project.JSONFolder) {
		t.Errorf("Dirs = %v, want [%s]", cfg.Dirs, filepath.Join(folder, project.JSONFolder))
	}
	if len(cfg.Files) != 1 || cfg.Files[0] != filepath.Join(folder, "lookups", "people.csv") {
		t.Errorf("Files = %v", cfg.Files)
	}

	if got := ForProject(folder, &project.Config{}, 0); len(got.Files) != 0 {
		t.Errorf("Expected no files without a lookup list, got %v", got.Files)
	}
}
