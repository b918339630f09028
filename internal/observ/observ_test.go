package observ

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("load")
	timer.End(idx, "fixture")
	timer.End(42, "ignored")
	report := timer.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("expected 1 phase, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "load" || report.Phases[0].Note != "fixture" {
		t.Fatalf("unexpected phase %+v", report.Phases[0])
	}
	if !strings.Contains(timer.Summary(), "total") {
		t.Fatalf("summary missing total line")
	}
}

func TestTimerTimeRecordsFailure(t *testing.T) {
	timer := NewTimer()
	want := errors.New("boom")
	if err := timer.Time("load", func() (string, error) { return "", want }); err != want {
		t.Fatalf("err = %v", err)
	}
	if got := timer.Report().Phases[0].Note; got != "failed" {
		t.Fatalf("note = %q", got)
	}
}

func TestNilTimerIsNoop(t *testing.T) {
	var timer *Timer
	idx := timer.Begin("x")
	timer.End(idx, "")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", got)
	}
}

func TestMetricsCountResolutions(t *testing.T) {
	m := NewMetrics(nil)
	m.ObserveResolution("ok", time.Microsecond)
	m.ObserveResolution("ok", time.Microsecond)
	m.ObserveResolution("step", time.Microsecond)
	m.ObservePlacement("fallback")

	if got := testutil.ToFloat64(m.resolutions.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok resolutions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.placements.WithLabelValues("fallback")); got != 1 {
		t.Fatalf("fallback placements = %v, want 1", got)
	}

	counts, err := m.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["spanres_resolutions_total{outcome=step}"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if counts["spanres_resolution_duration_seconds_count{outcome=ok}"] != 2 {
		t.Fatalf("histogram count missing: %v", counts)
	}

	var sb strings.Builder
	if err := m.WriteText(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "spanres_diagnostic_placements_total{placement=fallback} 1") {
		t.Fatalf("text output:\n%s", sb.String())
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveResolution("ok", 0)
	m.ObservePlacement("precise")
	m.ObserveCache("hit")
	if counts, err := m.Counts(); err != nil || counts != nil {
		t.Fatalf("expected nil counts, got %v %v", counts, err)
	}
}
