package decision

import (
	"fmt"

	"github.com/suykerbuyk/blue/internal/buffer"
)

// Analyze scores the batch on simple signals without calling a model.
func Analyze(s *buffer.Summary) Opportunity {
	var o Opportunity
	if s == nil {
		return o
	}

	threshold := s.ScoreBreakdown.ScoreThreshold
	if s.BufferScore >= threshold {
		o.Opportunities = append(o.Opportunities, fmt.Sprintf("high change score (%d)", s.BufferScore))
		o.Confidence += 3
	}

	switch s.PriorityLevel {
	case buffer.PriorityHigh:
		o.Opportunities = append(o.Opportunities, "high priority changes")
		o.Confidence += 3
	case buffer.PriorityMedium:
		o.Opportunities = append(o.Opportunities, "medium priority changes")
		o.Confidence += 2
	}

	if s.ProcessingReason == buffer.ReasonFunctionCompletion || s.ProcessingReason == buffer.ReasonArchitecturalChange {
		o.Opportunities = append(o.Opportunities, "structural change: "+string(s.ProcessingReason))
		o.Confidence += 2
	}

	if s.FilesAffected >= 3 {
		o.Opportunities = append(o.Opportunities, fmt.Sprintf("multiple files affected (%d)", s.FilesAffected))
		o.Confidence++
	}

	if s.ProcessingReason == buffer.ReasonIdleTimeout {
		o.Risks = append(o.Risks, "triggered by idle timeout")
		o.Confidence--
	}
	if s.BufferScore < 3 {
		o.Risks = append(o.Risks, "low change score")
		o.Confidence -= 2
	}
	if s.FilesAffected == 1 && s.PriorityLevel == buffer.PriorityLow {
		o.Risks = append(o.Risks, "single file, low priority")
		o.Confidence--
	}

	o.Confidence = max(0, min(10, o.Confidence))
	o.ShouldIntervene = o.Confidence >= 5
	return o
}
