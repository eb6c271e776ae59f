// Package validation evaluates project-level business rules against one
// indexed document row at a time.
//
// # Overview
//
// A project declares an ordered list of rules in its project_config.json:
//
//	{"strategy": "max_tickboxes", "field_names": ["a", "b", "c"], "params": {"max": 1}}
//
// Each rule names a Strategy from a fixed Registry. ProjectValidations walks the
// rules in declared order, builds a fresh Context for every invocation and merges
// the resulting failures so that at most one Failure survives per (page, field).
// The first rule to flag a field wins.
//
// # Evaluation Flow
//
//	row values (strings) ─► Values (Empty | Text | Ticked)
//	       ↓
//	for each rule in declared order:
//	  unknown strategy  → warn, skip
//	  build Context     → Evaluate
//	  error or panic    → warn, drop this rule's output
//	  merge failures    → first (page, field) wins
//	       ↓
//	[]Failure (declaration order preserved)
//
// # Lookup Tables
//
// Rules such as value_exists_in_lookup need a reference table. ProjectValidations
// builds a lookup.Manager when the project config names a lookup_list. Any problem
// loading it (missing file, malformed CSV) is logged and kept available through
// LookupError; the lookup-based strategies then become no-ops and every other
// rule still runs.
//
// # Concurrency
//
// Strategies are pure functions of their Context. The only shared mutable state is
// the lookup manager's row cursor, which RunValidations positions before each row,
// so a ProjectValidations must not be used from several goroutines at once.
package validation
