package observ

import (
	"strings"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("discover")
	timer.End(idx, "12 files")
	idx = timer.Begin("lint")
	timer.End(idx, "")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "discover" || report.Phases[0].Note != "12 files" {
		t.Fatalf("unexpected phase: %+v", report.Phases[0])
	}

	summary := timer.Summary()
	if !strings.Contains(summary, "discover") || !strings.Contains(summary, "total") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(3, "ignored")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("expected no phases, got %+v", got)
	}
}
