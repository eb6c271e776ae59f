package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig contains configuration for history pruning.
type RetentionConfig struct {
	// RetentionDays is the number of days to keep runs.
	// 0 keeps runs forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// Scheduler prunes old runs on a cron schedule.
type Scheduler struct {
	storage Storage
	config  RetentionConfig
	now     func() time.Time
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a retention scheduler over storage.
func NewScheduler(storage Storage, config RetentionConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		storage: storage,
		config:  config,
		now:     time.Now,
		cron:    cron.New(),
		logger:  logger.With("component", "history.scheduler"),
	}
}

// Prune removes runs older than the retention period once.
func (s *Scheduler) Prune(ctx context.Context) (int64, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}
	before := s.now().AddDate(0, 0, -s.config.RetentionDays)
	return s.storage.Prune(ctx, before)
}

// Start schedules pruning with the configured cron expression. It returns
// immediately; the schedule stops when ctx is done or Stop is called. An
// empty schedule or zero retention does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.PruneSchedule == "" || s.config.RetentionDays <= 0 {
		s.logger.Debug("history pruning not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.PruneSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.PruneSchedule, func() { s.runPruning(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("history retention scheduler started",
		"schedule", s.config.PruneSchedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runPruning(ctx context.Context) {
	deleted, err := s.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled history pruning failed", "error", err)
		return
	}
	s.logger.Info("scheduled history pruning completed", "deleted_count", deleted)
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("history retention scheduler stopped")
	}
}

// IsRunning reports whether the schedule is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
