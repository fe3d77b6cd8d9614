package feedback

import (
	"fmt"
	"sort"
	"strings"
)

// Format renders an Export as aligned terminal output.
func Format(e Export) string {
	var b strings.Builder
	b.WriteString("blue stats\n")

	s := e.Stats
	b.WriteString("\nThreshold\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "current", s.Current)
	fmt.Fprintf(&b, "  %-20s %d\n", "initial", s.Initial)
	fmt.Fprintf(&b, "  %-20s %+d\n", "change", s.Delta)
	fmt.Fprintf(&b, "  %-20s %s\n", "trend", s.Trend)

	if s.Total == 0 {
		b.WriteString("\n  No feedback recorded yet.\n")
		return b.String()
	}

	b.WriteString("\nFeedback\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "total", s.Total)
	fmt.Fprintf(&b, "  %-20s %d\n", "positive", s.Positive)
	fmt.Fprintf(&b, "  %-20s %d\n", "negative", s.Negative)
	if s.LastFeedback != nil {
		fmt.Fprintf(&b, "  %-20s %s\n", "last", s.LastFeedback.Format("2006-01-02 15:04:05"))
	}

	a := e.Analysis
	fmt.Fprintf(&b, "  %-20s %d%% (%s)\n", "positive ratio", int(a.PositiveRatio*100+0.5), a.Effectiveness)

	if len(a.ByReason) > 0 {
		b.WriteString("\nBy Trigger\n")
		reasons := make([]string, 0, len(a.ByReason))
		for r := range a.ByReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			rc := a.ByReason[r]
			fmt.Fprintf(&b, "  %-24s %3d +   %3d -\n", r, rc.Positive, rc.Negative)
		}
	}

	return b.String()
}
