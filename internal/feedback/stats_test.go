package feedback

import (
	"strings"
	"testing"
	"time"
)

func records(dirs string, thresholds ...int) []Record {
	var out []Record
	for i, th := range thresholds {
		d := Positive
		if dirs[i] == '-' {
			d = Negative
		}
		out = append(out, Record{
			Timestamp:    time.Date(2025, 5, 1, 10, i, 0, 0, time.UTC),
			Direction:    d,
			NewThreshold: th,
			Reason:       "score_threshold",
		})
	}
	return out
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name string
		recs []Record
		want Trend
	}{
		{"empty", nil, TrendStable},
		{"two points", records("--", 6, 7), TrendStable},
		{"flat", records("---", 10, 10, 10), TrendDecreasing},
		{"increasing", records("---", 6, 7, 8), TrendIncreasing},
		{"increasing with plateau", records("---", 6, 7, 7), TrendIncreasing},
		{"decreasing", records("+++", 5, 4, 3), TrendDecreasing},
		{"fluctuating", records("+-+", 4, 5, 4), TrendFluctuating},
		{"only last three count", records("++--", 2, 9, 9, 8), TrendDecreasing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendOf(tt.recs); got != tt.want {
				t.Errorf("TrendOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(records("+-+", 4, 5, 4), 5, 4)
	if s.Total != 3 || s.Positive != 2 || s.Negative != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.Delta != -1 {
		t.Errorf("Delta = %d, want -1", s.Delta)
	}
	if s.LastFeedback == nil || s.LastFeedback.Minute() != 2 {
		t.Errorf("LastFeedback = %v", s.LastFeedback)
	}

	empty := ComputeStats(nil, 5, 5)
	if empty.LastFeedback != nil || empty.Trend != TrendStable {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestAnalyze(t *testing.T) {
	recs := records("++-", 4, 3, 4)
	recs[2].Reason = "idle_timeout"

	a := Analyze(recs)
	if a.Effectiveness != "good" {
		t.Errorf("Effectiveness = %q, want good", a.Effectiveness)
	}
	if got := a.ByReason["score_threshold"]; got.Positive != 2 || got.Negative != 0 {
		t.Errorf("score_threshold = %+v", got)
	}
	if got := a.ByReason["idle_timeout"]; got.Negative != 1 {
		t.Errorf("idle_timeout = %+v", got)
	}

	if got := Analyze(records("+-", 4, 5)).Effectiveness; got != "moderate" {
		t.Errorf("50%% effectiveness = %q, want moderate", got)
	}
	if got := Analyze(records("--+", 6, 7, 6)).Effectiveness; got != "needs_improvement" {
		t.Errorf("33%% effectiveness = %q, want needs_improvement", got)
	}
	if got := Analyze(nil).Effectiveness; got != "unknown" {
		t.Errorf("empty effectiveness = %q", got)
	}
}

func TestFormat(t *testing.T) {
	recs := records("+-", 4, 5)
	out := Format(Export{
		History:  recs,
		Stats:    ComputeStats(recs, 5, 5),
		Analysis: Analyze(recs),
	})
	for _, want := range []string{"blue stats", "current", "positive ratio", "50% (moderate)", "score_threshold"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	empty := Format(Export{Stats: ComputeStats(nil, 5, 5)})
	if !strings.Contains(empty, "No feedback recorded yet.") {
		t.Errorf("empty output:\n%s", empty)
	}
}
