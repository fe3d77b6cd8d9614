// Package render formats released batches as text for prompts and for the
// terminal.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/change"
)

// maxListed caps how many changes Describe spells out.
const maxListed = 8

// Describe renders a one-paragraph description of the batch for a model
// prompt.
func Describe(s *buffer.Summary) string {
	if s == nil || s.TotalChanges == 0 {
		return "no changes"
	}

	var parts []string
	for i, c := range s.Changes {
		if i == maxListed {
			parts = append(parts, fmt.Sprintf("and %d more", len(s.Changes)-maxListed))
			break
		}
		parts = append(parts, describeChange(c))
	}

	return fmt.Sprintf("%d %s across %d %s: %s",
		s.TotalChanges, plural(s.TotalChanges, "change", "changes"),
		s.FilesAffected, plural(s.FilesAffected, "file", "files"),
		strings.Join(parts, "; "))
}

func describeChange(c buffer.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", c.Kind, filepath.Base(c.File))

	var notes []string
	if c.Kind != change.Deleted && c.Details.LinesChanged != 0 {
		notes = append(notes, fmt.Sprintf("%+d lines", c.Details.LinesChanged))
	}
	if n := len(c.Details.FunctionsAdded); n > 0 {
		notes = append(notes, "new: "+strings.Join(c.Details.FunctionsAdded, ", "))
	}
	if c.Details.HasSecurity {
		notes = append(notes, "security")
	}
	if c.Details.HasErrorHandling {
		notes = append(notes, "error handling")
	}
	if c.Details.HasTests {
		notes = append(notes, "tests")
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(notes, ", "))
	}
	return b.String()
}

// Context renders the score/reason/priority line that accompanies Describe.
func Context(s *buffer.Summary) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("Score: %d, Reason: %s, Priority: %s", s.BufferScore, s.ProcessingReason, s.PriorityLevel)
}

// Batch renders the batch as a short markdown block for the terminal.
func Batch(s *buffer.Summary) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s priority)\n\n", reasonTitle(s.ProcessingReason), s.PriorityLevel)
	fmt.Fprintf(&b, "%d %s, %d %s, score %d / threshold %d\n\n",
		s.TotalChanges, plural(s.TotalChanges, "change", "changes"),
		s.FilesAffected, plural(s.FilesAffected, "file", "files"),
		s.BufferScore, s.ScoreBreakdown.ScoreThreshold)

	b.WriteString("| Time | Kind | File | Score |\n")
	b.WriteString("|------|------|------|-------|\n")
	for i, c := range s.Changes {
		score := 0
		if i < len(s.ScoreBreakdown.EventScores) {
			score = s.ScoreBreakdown.EventScores[i].Score
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` | %d |\n",
			c.Timestamp.Format("15:04:05"), c.Kind, c.File, score)
	}

	var added []string
	for _, c := range s.Changes {
		added = append(added, c.Details.FunctionsAdded...)
	}
	if len(added) > 0 {
		fmt.Fprintf(&b, "\nNew: %s\n", strings.Join(added, ", "))
	}
	return b.String()
}

func reasonTitle(r buffer.Reason) string {
	switch r {
	case buffer.ReasonScoreThreshold:
		return "Significant changes"
	case buffer.ReasonIdleTimeout:
		return "Pause after changes"
	case buffer.ReasonFunctionCompletion:
		return "New functions"
	case buffer.ReasonArchitecturalChange:
		return "Structural change"
	case buffer.ReasonBufferFull:
		return "Many changes"
	}
	return string(r)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
