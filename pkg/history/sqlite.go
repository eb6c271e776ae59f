package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	// DriverCGo is github.com/mattn/go-sqlite3.
	DriverCGo = "sqlite3"

	// DriverPure is modernc.org/sqlite, which needs no C toolchain.
	DriverPure = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver selects the database/sql driver: "sqlite3" or "sqlite".
	// Default: "sqlite"
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Logger receives storage events. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       DriverPure,
		Path:         "formzone-history.db",
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema when missing.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverPure
	}
	if config.Driver != DriverCGo && config.Driver != DriverPure {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, config.Driver)
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.sqlite", "driver", config.Driver)

	if dir := filepath.Dir(config.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStorageError(config.Driver, "mkdir", err)
		}
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStorageError(config.Driver, "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	backend := s.config.Driver

	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError(backend, "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError(backend, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(backend, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError(backend, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return NewStorageError(backend, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError(backend, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a run and its entries in one transaction.
func (s *SQLiteStorage) Store(ctx context.Context, run *Run) error {
	backend := s.config.Driver
	if run == nil || run.ID == "" {
		return NewStorageError(backend, "store", ErrInvalidRun)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError(backend, "begin", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, kind, project, csv_path, started, finished, documents, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished = excluded.finished,
			documents = excluded.documents,
			failures = excluded.failures
	`,
		run.ID, run.Kind, run.Project, run.CSVPath,
		toNanos(run.Started), toNanos(run.Finished),
		run.Documents, run.Failures,
	)
	if err != nil {
		return NewStorageError(backend, "store", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM failures WHERE run_id = ?", run.ID); err != nil {
		return NewStorageError(backend, "store", err)
	}

	if len(run.Entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO failures (run_id, seq, row_index, page, field, message)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return NewStorageError(backend, "prepare", err)
		}
		defer stmt.Close()

		for i, f := range run.Entries {
			if _, err := stmt.ExecContext(ctx, run.ID, i, f.Row, f.Page, f.Field, f.Message); err != nil {
				return NewStorageError(backend, "store_failure", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError(backend, "commit", err)
	}
	return nil
}

// Runs returns matching runs, newest first.
func (s *SQLiteStorage) Runs(ctx context.Context, query Query) ([]*Run, error) {
	var conditions []string
	var args []any

	if query.Project != "" {
		conditions = append(conditions, "project = ?")
		args = append(args, query.Project)
	}
	if query.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, query.Kind)
	}
	if query.Since != nil {
		conditions = append(conditions, "started >= ?")
		args = append(args, toNanos(*query.Since))
	}

	sqlQuery := "SELECT id, kind, project, csv_path, started, finished, documents, failures FROM runs"
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := defaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started DESC LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "runs", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Kind, &r.Project, &r.CSVPath, &started, &finished, &r.Documents, &r.Failures); err != nil {
			return nil, NewStorageError(s.config.Driver, "scan", err)
		}
		r.Started = fromNanos(started)
		r.Finished = fromNanos(finished)
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "runs", err)
	}
	return runs, nil
}

// Failures returns the entries of a run ordered by row then insertion.
func (s *SQLiteStorage) Failures(ctx context.Context, runID string) ([]Failure, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "failures", err)
	}
	if exists == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT row_index, page, field, message FROM failures
		WHERE run_id = ? ORDER BY row_index, seq
	`, runID)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "failures", err)
	}
	defer rows.Close()

	failures := []Failure{}
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Row, &f.Page, &f.Field, &f.Message); err != nil {
			return nil, NewStorageError(s.config.Driver, "scan", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "failures", err)
	}
	return failures, nil
}

// Prune deletes runs started before the given time together with their entries.
func (s *SQLiteStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	backend := s.config.Driver
	cutoff := toNanos(before)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewStorageError(backend, "begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM failures WHERE run_id IN (SELECT id FROM runs WHERE started < ?)", cutoff); err != nil {
		return 0, NewStorageError(backend, "prune", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE started < ?", cutoff)
	if err != nil {
		return 0, NewStorageError(backend, "prune", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError(backend, "prune", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, NewStorageError(backend, "commit", err)
	}
	return count, nil
}

// Close releases the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError(s.config.Driver, "close", err)
	}
	return nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
