// Package history records validation runs so that operators can see when a
// batch was last checked and what was found.
//
// A Run is written once per document or batch validation with its failure
// entries. Two backends implement Storage:
//
//   - SQLiteStorage, on either github.com/mattn/go-sqlite3 (driver "sqlite3")
//     or modernc.org/sqlite (driver "sqlite")
//   - MemoryStorage, for tests and one-shot runs
//
// Open picks the backend from configuration. Scheduler prunes runs older than
// the retention period on a cron schedule.
package history
