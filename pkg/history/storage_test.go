package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// backends returns a fresh instance of every storage backend.
func backends(t *testing.T) map[string]Storage {
	t.Helper()

	out := map[string]Storage{"memory": NewMemoryStorage()}
	for _, driver := range []string{DriverCGo, DriverPure} {
		s, err := NewSQLiteStorage(&SQLiteConfig{
			Driver:      driver,
			Path:        filepath.Join(t.TempDir(), driver+".db"),
			WALMode:     true,
			BusyTimeout: 5 * time.Second,
		})
		if err != nil {
			t.Fatalf("Failed to create %s storage: %v", driver, err)
		}
		out[driver] = s
	}
	return out
}

func sampleRun(id, project string, started time.Time, entries ...Failure) *Run {
	return &Run{
		ID:        id,
		Kind:      KindBatch,
		Project:   project,
		CSVPath:   "/batches/" + project + "/output.csv",
		Started:   started,
		Finished:  started.Add(2 * time.Second),
		Documents: 3,
		Failures:  len(entries),
		Entries:   entries,
	}
}

// TestStorage_StoreAndQuery tests storing runs and listing them newest first.
func TestStorage_StoreAndQuery(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			runs := []*Run{
				sampleRun("r1", "herds", base),
				sampleRun("r2", "herds", base.Add(time.Hour), Failure{Row: 2, Page: 1, Field: "Herd", Message: "bad"}),
				sampleRun("r3", "grants", base.Add(2*time.Hour)),
			}
			for _, r := range runs {
				if err := s.Store(ctx, r); err != nil {
					t.Fatalf("Store(%s) failed: %v", r.ID, err)
				}
			}

			got, err := s.Runs(ctx, Query{})
			if err != nil {
				t.Fatalf("Runs() failed: %v", err)
			}
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if diff := cmp.Diff([]string{"r3", "r2", "r1"}, ids); diff != "" {
				t.Errorf("Run order mismatch (-want +got):\n%s", diff)
			}

			got, err = s.Runs(ctx, Query{Project: "herds", Limit: 1})
			if err != nil {
				t.Fatalf("Runs() failed: %v", err)
			}
			if len(got) != 1 || got[0].ID != "r2" {
				t.Fatalf("Expected only r2, got %+v", got)
			}
			if !got[0].Started.Equal(base.Add(time.Hour)) {
				t.Errorf("Expected started %v, got %v", base.Add(time.Hour), got[0].Started)
			}
			if got[0].Duration() != 2*time.Second {
				t.Errorf("Expected duration 2s, got %v", got[0].Duration())
			}
			if got[0].Entries != nil {
				t.Errorf("Expected Runs to omit entries, got %v", got[0].Entries)
			}

			since := base.Add(90 * time.Minute)
			got, err = s.Runs(ctx, Query{Since: &since})
			if err != nil {
				t.Fatalf("Runs() failed: %v", err)
			}
			if len(got) != 1 || got[0].ID != "r3" {
				t.Errorf("Expected only r3 since %v, got %d runs", since, len(got))
			}
		})
	}
}

// TestStorage_Failures tests reading back failure entries.
func TestStorage_Failures(t *testing.T) {
	started := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			entries := []Failure{
				{Row: 4, Page: 2, Field: "Total", Message: "The sum of the fields is 10.0, but the total is 12.0."},
				{Row: 1, Page: 1, Field: "Email", Message: "Invalid email: x"},
				{Row: 4, Page: 1, Field: "Herd", Message: "Value 'H9' not found in lookup list."},
			}
			if err := s.Store(ctx, sampleRun("r1", "herds", started, entries...)); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			got, err := s.Failures(ctx, "r1")
			if err != nil {
				t.Fatalf("Failures() failed: %v", err)
			}
			want := []Failure{entries[1], entries[0], entries[2]}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Failures mismatch (-want +got):\n%s", diff)
			}

			if _, err := s.Failures(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("Expected ErrRunNotFound, got %v", err)
			}
		})
	}
}

// TestStorage_StoreReplaces tests that storing a run twice updates it.
func TestStorage_StoreReplaces(t *testing.T) {
	started := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			run := sampleRun("r1", "herds", started, Failure{Row: 0, Page: 1, Field: "A", Message: "x"})
			if err := s.Store(ctx, run); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}
			run.Entries = nil
			run.Failures = 0
			if err := s.Store(ctx, run); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			runs, _ := s.Runs(ctx, Query{})
			if len(runs) != 1 || runs[0].Failures != 0 {
				t.Errorf("Expected one run with no failures, got %+v", runs)
			}
			entries, err := s.Failures(ctx, "r1")
			if err != nil {
				t.Fatalf("Failures() failed: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("Expected no entries, got %v", entries)
			}
		})
	}
}

// TestStorage_Prune tests deleting runs by start time.
func TestStorage_Prune(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := context.Background()

			for i, id := range []string{"old1", "old2", "new"} {
				run := sampleRun(id, "herds", base.AddDate(0, 0, i*10), Failure{Row: 0, Page: 1, Field: "A", Message: "x"})
				if err := s.Store(ctx, run); err != nil {
					t.Fatalf("Store() failed: %v", err)
				}
			}

			deleted, err := s.Prune(ctx, base.AddDate(0, 0, 15))
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if deleted != 2 {
				t.Errorf("Expected 2 runs deleted, got %d", deleted)
			}

			runs, _ := s.Runs(ctx, Query{})
			if len(runs) != 1 || runs[0].ID != "new" {
				t.Errorf("Expected only 'new' to remain, got %+v", runs)
			}
			if _, err := s.Failures(ctx, "old1"); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("Expected pruned run to be gone, got %v", err)
			}
		})
	}
}

// TestStorage_InvalidRun tests that runs need an id.
func TestStorage_InvalidRun(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			err := s.Store(context.Background(), &Run{})
			if !errors.Is(err, ErrInvalidRun) {
				t.Errorf("Expected ErrInvalidRun, got %v", err)
			}
			var se *StorageError
			if !errors.As(err, &se) {
				t.Errorf("Expected StorageError, got %T", err)
			}
		})
	}
}

// TestOpen tests backend selection.
func TestOpen(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
	}{
		{DriverMemory, false},
		{DriverCGo, false},
		{DriverPure, false},
		{"postgres", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s, err := Open(tt.driver, filepath.Join(t.TempDir(), "h.db"), nil)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDriver) {
					t.Errorf("Expected ErrUnknownDriver, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%s) failed: %v", tt.driver, err)
			}
			s.Close()
		})
	}
}

// TestNewRun tests run construction.
func TestNewRun(t *testing.T) {
	a := NewRun(KindDocument, "herds", "out.csv")
	b := NewRun(KindDocument, "herds", "out.csv")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected unique ids, got %q and %q", a.ID, b.ID)
	}
	if a.Started.IsZero() {
		t.Error("Expected start time to be set")
	}
	if a.Duration() != 0 {
		t.Errorf("Expected zero duration for unfinished run, got %v", a.Duration())
	}
}
