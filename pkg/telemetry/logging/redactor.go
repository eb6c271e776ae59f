package logging

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Pattern is a custom redaction rule.
type Pattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Redactor masks personal data found in form values before it reaches a log.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternEmail   = "email"
	PatternPhone   = "phone"
	PatternEircode = "eircode"
	PatternPPSN    = "ppsn"
)

var defaultPatterns = map[string]struct {
	regex       string
	replacement string
}{
	PatternEmail: {
		regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		replacement: "***@***",
	},
	// Irish and international phone numbers.
	PatternPhone: {
		regex:       `(?:\+353|\b0)[ -]?\d{1,2}[ -]?\d{3}[ -]?\d{3,4}\b`,
		replacement: "***-***-****",
	},
	PatternEircode: {
		regex:       `(?i)\b(?:[ACDEFHKNPRTVWXY]\d{2}|D6W) ?[0-9ACDEFHKNPRTVWXY]{4}\b`,
		replacement: "*** ****",
	},
	// Personal public service numbers.
	PatternPPSN: {
		regex:       `(?i)\b\d{7}[A-W][A-IW]?\b`,
		replacement: "*******",
	},
}

// NewRedactor creates a Redactor with the built-in patterns followed by the
// custom ones. Custom patterns that do not compile are skipped.
func NewRedactor(custom []Pattern) *Redactor {
	r := &Redactor{}

	names := make([]string, 0, len(defaultPatterns))
	for name := range defaultPatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := defaultPatterns[name]
		r.patterns = append(r.patterns, &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// Len returns the number of active patterns.
func (r *Redactor) Len() int {
	return len(r.patterns)
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// sensitiveKeys are attribute keys whose values are masked outright.
var sensitiveKeys = []string{"value", "password", "secret", "token", "ppsn"}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if lower == s || strings.HasSuffix(lower, "_"+s) {
			return true
		}
	}
	return false
}

func (r *Redactor) redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if isSensitiveKey(a.Key) && a.Value.String() != "" {
			return slog.String(a.Key, "***")
		}
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]any, len(attrs))
		for i, ga := range attrs {
			out[i] = r.redactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	default:
		return a
	}
}

// redactingHandler applies a Redactor to every string attribute and the
// message before handing the record on.
type redactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.RedactString(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}
