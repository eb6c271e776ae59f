// Package batch runs a project's validations over the rows of an output CSV
// and writes the failures back as QC comments.
//
// ValidateDocument checks one row and ValidateBatch checks every row.
// Failures are merged into the row's Comments cell, replacing any earlier
// comment for the same page and field, and the CSV is saved through the
// row store's SaveQueue. Runs are optionally persisted to a history.Storage
// and traced with OpenTelemetry.
//
// Example:
//
//	v := batch.New(pv, store,
//	    batch.WithFieldToPage(layout.FieldToPage),
//	    batch.WithSaveQueue(queue),
//	    batch.WithHistory(storage, "census"),
//	)
//	summary, err := v.ValidateBatch(ctx)
//
// Checklist and Summarise report on the comments of a batch, and Deliver
// splits finished batches into a data file and an exceptions file.
package batch
