package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"formzone-hq/indexer/pkg/config"
	"formzone-hq/indexer/pkg/validation"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ validation.Recorder = (*Collector)(nil)

func newTestCollector(enabled bool) *Collector {
	return NewCollector(&config.MetricsConfig{Enabled: enabled}, nil)
}

func TestNewCollector_Defaults(t *testing.T) {
	c := NewCollector(nil, nil)

	if c.Registry() == nil {
		t.Fatal("Expected registry, got nil")
	}
	if c.config.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Expected namespace %q, got %q", config.DefaultMetricsNamespace, c.config.Namespace)
	}
	if len(c.config.RuleDurationBuckets) == 0 {
		t.Error("Expected default rule duration buckets")
	}
}

func TestCollector_RecordRule(t *testing.T) {
	c := newTestCollector(true)

	c.RecordRule("email_format", 2, time.Millisecond, nil)
	c.RecordRule("email_format", 1, time.Millisecond, nil)
	c.RecordRule("lookup_match", 0, time.Millisecond, errors.New("bad column"))

	failures := testutil.ToFloat64(c.validationMetrics.failuresTotal.WithLabelValues("email_format"))
	if failures != 3 {
		t.Errorf("Expected 3 failures, got %v", failures)
	}

	ruleErrors := testutil.ToFloat64(c.validationMetrics.ruleErrors.WithLabelValues("lookup_match"))
	if ruleErrors != 1 {
		t.Errorf("Expected 1 rule error, got %v", ruleErrors)
	}

	if n := testutil.CollectAndCount(c.validationMetrics.ruleDuration); n != 2 {
		t.Errorf("Expected 2 duration series, got %d", n)
	}
}

func TestCollector_RecordRun(t *testing.T) {
	c := newTestCollector(true)

	c.RecordRun(0, 0, time.Millisecond)
	c.RecordRun(1, 4, time.Millisecond)

	if got := testutil.ToFloat64(c.validationMetrics.runsTotal); got != 2 {
		t.Errorf("Expected 2 runs, got %v", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := newTestCollector(false)

	c.RecordRule("email_format", 2, time.Millisecond, nil)
	c.RecordRun(0, 2, time.Millisecond)
	c.RecordBatch(10, 2, time.Second, false)
	c.RecordSaveError()

	if got := testutil.ToFloat64(c.validationMetrics.runsTotal); got != 0 {
		t.Errorf("Expected no runs recorded, got %v", got)
	}
	if got := testutil.ToFloat64(c.batchMetrics.saveErrors); got != 0 {
		t.Errorf("Expected no save errors recorded, got %v", got)
	}
}

func TestCollector_RecordBatch(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		cancelled bool
		outcome   string
	}{
		{"clean", 0, false, "clean"},
		{"with failures", 3, false, "failures"},
		{"cancelled wins", 3, true, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCollector(true)
			c.RecordBatch(5, tt.failures, time.Second, tt.cancelled)

			if got := testutil.ToFloat64(c.batchMetrics.batchesTotal.WithLabelValues(tt.outcome)); got != 1 {
				t.Errorf("Expected 1 batch with outcome %q, got %v", tt.outcome, got)
			}
			if got := testutil.ToFloat64(c.batchMetrics.documentsTotal); got != 5 {
				t.Errorf("Expected 5 documents, got %v", got)
			}
		})
	}
}

func TestCollector_SaveErrorsAndLookup(t *testing.T) {
	c := newTestCollector(true)

	c.RecordSaveError()
	c.RecordSaveError()
	c.SetLookupAvailable(true)

	if got := testutil.ToFloat64(c.batchMetrics.saveErrors); got != 2 {
		t.Errorf("Expected 2 save errors, got %v", got)
	}
	if got := testutil.ToFloat64(c.batchMetrics.lookupAvailable); got != 1 {
		t.Errorf("Expected lookup gauge 1, got %v", got)
	}

	c.SetLookupAvailable(false)
	if got := testutil.ToFloat64(c.batchMetrics.lookupAvailable); got != 0 {
		t.Errorf("Expected lookup gauge 0, got %v", got)
	}
}

func TestCollector_StrategyCardinality(t *testing.T) {
	c := newTestCollector(true)
	c.cardinalityLimiter = NewCardinalityLimiter(2)

	for i := 0; i < 5; i++ {
		c.RecordRule(fmt.Sprintf("strategy_%d", i), 1, time.Millisecond, nil)
	}

	if got := testutil.ToFloat64(c.validationMetrics.failuresTotal.WithLabelValues(otherStrategy)); got != 3 {
		t.Errorf("Expected 3 failures folded into %q, got %v", otherStrategy, got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("Expected first two values to be allowed")
	}
	if cl.Allow("c") {
		t.Error("Expected third value to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("Expected known value to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Expected count 2, got %d", cl.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(true)
	c.RecordRun(0, 1, time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "formzone_validation_runs_total 1") {
		t.Errorf("Expected runs_total in exposition, got:\n%s", body)
	}
}
