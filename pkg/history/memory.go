package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage implements Storage in memory. Runs are lost on exit.
type MemoryStorage struct {
	runs map[string]*Run
	mu   sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{runs: make(map[string]*Run)}
}

// Store saves a copy of run, replacing any run with the same id.
func (s *MemoryStorage) Store(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return NewStorageError("memory", "store", ErrInvalidRun)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	runCopy.Entries = append([]Failure(nil), run.Entries...)
	s.runs[run.ID] = &runCopy
	return nil
}

// Runs returns matching runs, newest first, without entries.
func (s *MemoryStorage) Runs(ctx context.Context, query Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*Run{}
	for _, run := range s.runs {
		if query.Project != "" && run.Project != query.Project {
			continue
		}
		if query.Kind != "" && run.Kind != query.Kind {
			continue
		}
		if query.Since != nil && run.Started.Before(*query.Since) {
			continue
		}
		runCopy := *run
		runCopy.Entries = nil
		results = append(results, &runCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Started.After(results[j].Started)
	})

	limit := defaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Failures returns the entries of a run ordered by row.
func (s *MemoryStorage) Failures(ctx context.Context, runID string) ([]Failure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := append([]Failure{}, run.Entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out, nil
}

// Prune deletes runs started before the given time.
func (s *MemoryStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, run := range s.runs {
		if run.Started.Before(before) {
			delete(s.runs, id)
			count++
		}
	}
	return count, nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}
