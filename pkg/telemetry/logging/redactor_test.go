package logging

import (
	"strings"
	"testing"
)

func TestNewRedactor(t *testing.T) {
	tests := []struct {
		name         string
		custom       []Pattern
		wantPatterns int
	}{
		{"default patterns only", nil, 4},
		{"with custom pattern", []Pattern{{Name: "herd", Pattern: `H\d{6}`, Replacement: "H******"}}, 5},
		{"invalid custom pattern is skipped", []Pattern{{Name: "bad", Pattern: "[unclosed", Replacement: "***"}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRedactor(tt.custom)
			if r.Len() != tt.wantPatterns {
				t.Errorf("Expected %d patterns, got %d", tt.wantPatterns, r.Len())
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor([]Pattern{{Name: "herd", Pattern: `H\d{6}`, Replacement: "H******"}})

	tests := []struct {
		name   string
		input  string
		hidden string
	}{
		{"email", "contact ann.smith@example.ie today", "ann.smith@example.ie"},
		{"mobile", "mobile 0871234567", "0871234567"},
		{"spaced mobile", "mobile 087 123 4567", "087 123 4567"},
		{"international", "phone +353 87 123 4567", "+353 87 123 4567"},
		{"eircode", "address T12 AC34, Cork", "T12 AC34"},
		{"dublin eircode", "d6w xy12", "d6w xy12"},
		{"ppsn", "PPSN 1234567TA", "1234567TA"},
		{"custom", "herd H123456", "H123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RedactString(tt.input)
			if strings.Contains(got, tt.hidden) {
				t.Errorf("Expected %q to be redacted, got %q", tt.hidden, got)
			}
		})
	}
}

func TestRedactor_KeepsPlainText(t *testing.T) {
	r := NewRedactor(nil)

	for _, s := range []string{
		"The sum of the fields is 10.0, but the total is 12.0.",
		"At most 1 of these may be ticked; 2 are ticked.",
		"",
	} {
		if got := r.RedactString(s); got != s {
			t.Errorf("Expected %q unchanged, got %q", s, got)
		}
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"value", true},
		{"VALUE", true},
		{"field_value", true},
		{"api_token", true},
		{"field", false},
		{"values_count", false},
	}

	for _, tt := range tests {
		if got := isSensitiveKey(tt.key); got != tt.want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
