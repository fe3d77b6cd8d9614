package render

import (
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/change"
)

func sample() *buffer.Summary {
	ts := time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC)
	return &buffer.Summary{
		TotalChanges:  2,
		FilesAffected: 2,
		Changes: []buffer.Entry{
			{File: "/src/auth.py", Kind: change.Modified, Timestamp: ts, Details: change.Details{
				LinesChanged: 12, FunctionsAdded: []string{"login"}, HasSecurity: true,
			}},
			{File: "/src/old.py", Kind: change.Deleted, Timestamp: ts},
		},
		ProcessingReason: buffer.ReasonFunctionCompletion,
		PriorityLevel:    buffer.PriorityMedium,
		BufferScore:      4,
		ScoreBreakdown: buffer.ScoreBreakdown{
			TotalScore: 4,
			EventScores: []buffer.EventScore{
				{File: "/src/auth.py", Kind: change.Modified, Score: 3, Timestamp: ts},
				{File: "/src/old.py", Kind: change.Deleted, Score: 1, Timestamp: ts},
			},
			ScoreThreshold: 5,
		},
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(sample())
	want := "2 changes across 2 files: modified auth.py (+12 lines, new: login, security); deleted old.py"
	if got != want {
		t.Errorf("Describe =\n%q\nwant\n%q", got, want)
	}
}

func TestDescribe_Empty(t *testing.T) {
	if got := Describe(nil); got != "no changes" {
		t.Errorf("Describe(nil) = %q", got)
	}
}

func TestDescribe_CapsList(t *testing.T) {
	s := &buffer.Summary{TotalChanges: 10, FilesAffected: 10}
	for i := 0; i < 10; i++ {
		s.Changes = append(s.Changes, buffer.Entry{File: "f.go", Kind: change.Created})
	}
	got := Describe(s)
	if !strings.HasSuffix(got, "and 2 more") {
		t.Errorf("Describe = %q, want trailing 'and 2 more'", got)
	}
}

func TestContext(t *testing.T) {
	if got := Context(sample()); got != "Score: 4, Reason: function_completion, Priority: medium" {
		t.Errorf("Context = %q", got)
	}
}

func TestBatch(t *testing.T) {
	out := Batch(sample())
	checks := []string{
		"## New functions (medium priority)",
		"2 changes, 2 files, score 4 / threshold 5",
		"| 14:05:09 | modified | `/src/auth.py` | 3 |",
		"| 14:05:09 | deleted | `/src/old.py` | 1 |",
		"New: login",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("missing %q in:\n%s", c, out)
		}
	}
}
