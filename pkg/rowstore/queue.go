package rowstore

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// QueueConfig contains configuration for the save queue.
type QueueConfig struct {
	// Buffer is the size of the pending save channel.
	// Default: 256
	Buffer int

	// EnqueueTimeout bounds how long Enqueue blocks on a full channel.
	// Default: 5 seconds
	EnqueueTimeout time.Duration

	// FlushTimeout bounds how long Flush waits for pending saves.
	// Default: 5 seconds
	FlushTimeout time.Duration

	// Logger receives queue events. Default: slog.Default().
	Logger *slog.Logger

	// OnError is called after a save fails or is dropped.
	OnError func(path string, err error)
}

// DefaultQueueConfig returns the default save queue configuration.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		Buffer:         256,
		EnqueueTimeout: 5 * time.Second,
		FlushTimeout:   5 * time.Second,
	}
}

type saveJob struct {
	path  string
	rows  [][]string
	flush chan struct{}
}

// SaveQueue writes CSV snapshots on a background goroutine so that editing
// never waits on the disk. Saves are applied in the order they were queued.
type SaveQueue struct {
	config *QueueConfig
	jobs   chan saveJob
	done   chan struct{}

	// mu is held for reading while a job is sent, so Close cannot slip in
	// between the closed check and the send.
	mu     sync.RWMutex
	closed bool

	wg      sync.WaitGroup
	errors  atomic.Int64
	written atomic.Int64
	logger  *slog.Logger
}

// NewSaveQueue starts a save queue.
func NewSaveQueue(config *QueueConfig) *SaveQueue {
	if config == nil {
		config = DefaultQueueConfig()
	}
	defaults := DefaultQueueConfig()
	if config.Buffer <= 0 {
		config.Buffer = defaults.Buffer
	}
	if config.EnqueueTimeout <= 0 {
		config.EnqueueTimeout = defaults.EnqueueTimeout
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = defaults.FlushTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q := &SaveQueue{
		config: config,
		jobs:   make(chan saveJob, config.Buffer),
		done:   make(chan struct{}),
		logger: logger.With("component", "rowstore.queue"),
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Enqueue schedules rows to be written to path. The rows are copied, so the
// caller may keep editing them.
func (q *SaveQueue) Enqueue(path string, rows [][]string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.fail(path, ErrQueueClosed)
		return ErrQueueClosed
	}

	job := saveJob{path: path, rows: copyRows(rows)}

	select {
	case q.jobs <- job:
		q.logger.Debug("save enqueued", "path", path, "rows", len(rows))
		return nil
	case <-time.After(q.config.EnqueueTimeout):
		q.logger.Error("save queue full, dropping save",
			"path", path,
			"channel_capacity", q.config.Buffer,
		)
		q.fail(path, context.DeadlineExceeded)
		return context.DeadlineExceeded
	}
}

// EnqueueStore schedules a snapshot of s to be written to its path.
func (q *SaveQueue) EnqueueStore(s *Store) error {
	return q.Enqueue(s.Path(), s.Snapshot())
}

// Flush waits until every save queued before the call has been written, the
// flush timeout elapses, or ctx is done.
func (q *SaveQueue) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	timer := time.NewTimer(q.config.FlushTimeout)
	defer timer.Stop()

	if err := q.sendMarker(ctx, marker, timer); err != nil {
		return err
	}

	select {
	case <-marker:
		return nil
	case <-timer.C:
		q.logger.Warn("save queue flush timed out",
			"pending_count", len(q.jobs),
			"timeout", q.config.FlushTimeout,
		)
		return ErrFlushTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *SaveQueue) sendMarker(ctx context.Context, marker chan struct{}, timer *time.Timer) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- saveJob{flush: marker}:
		return nil
	case <-timer.C:
		return ErrFlushTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Errors returns the number of failed or dropped saves.
func (q *SaveQueue) Errors() int64 { return q.errors.Load() }

// Written returns the number of completed saves.
func (q *SaveQueue) Written() int64 { return q.written.Load() }

// Close stops accepting saves, writes everything already queued and waits for
// the worker to exit.
func (q *SaveQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Debug("save queue closed",
		"written", q.written.Load(),
		"errors", q.errors.Load(),
	)
	return nil
}

func (q *SaveQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case job := <-q.jobs:
			q.handle(job)

		case <-q.done:
			q.logger.Debug("draining save queue before shutdown", "pending_count", len(q.jobs))
			for {
				select {
				case job := <-q.jobs:
					q.handle(job)
				default:
					return
				}
			}
		}
	}
}

func (q *SaveQueue) handle(job saveJob) {
	if job.flush != nil {
		close(job.flush)
		return
	}

	start := time.Now()
	if err := writeCSV(job.path, job.rows); err != nil {
		q.logger.Error("failed to save csv", "path", job.path, "error", err)
		q.fail(job.path, err)
		return
	}
	q.written.Add(1)
	q.logger.Debug("csv saved",
		"path", job.path,
		"rows", len(job.rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (q *SaveQueue) fail(path string, err error) {
	q.errors.Add(1)
	if q.config.OnError != nil {
		q.config.OnError(path, err)
	}
}
