// Package logging provides structured logging with PII redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console formats
//   - Output to stdout, stderr or a rotated file (lumberjack)
//   - Redaction of personal data read off scanned forms
//   - Run-scoped fields (project, run_id, row) carried in a context and
//     added by the handler to records logged with a *Context method
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "logs/formzone.log",
//	    RedactPII: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Shutdown()
//	logger.SetDefault()
//
//	ctx = logging.WithRunID(ctx, run.ID)
//	slog.InfoContext(ctx, "batch validated", "failures", 3)
//
// # Redaction
//
// With RedactPII set, every string attribute and message is scanned for
// emails, phone numbers, eircodes and PPS numbers. Attributes named "value"
// (or ending in "_value") are masked outright since they carry raw field
// contents.
package logging
