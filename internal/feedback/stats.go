package feedback

// ComputeStats aggregates records. initial and current are the thresholds
// the records were collected against.
func ComputeStats(records []Record, initial, current int) Stats {
	s := Stats{
		Total:   len(records),
		Current: current,
		Initial: initial,
		Delta:   current - initial,
		Trend:   TrendOf(records),
	}
	for _, r := range records {
		if r.Direction == Positive {
			s.Positive++
		} else {
			s.Negative++
		}
	}
	if len(records) > 0 {
		last := records[len(records)-1].Timestamp
		s.LastFeedback = &last
	}
	return s
}

// TrendOf classifies the last three new thresholds. Fewer than three points
// is stable; a flat run counts as decreasing.
func TrendOf(records []Record) Trend {
	if len(records) < 3 {
		return TrendStable
	}
	tail := records[len(records)-3:]
	a, b, c := tail[0].NewThreshold, tail[1].NewThreshold, tail[2].NewThreshold
	switch {
	case a >= b && b >= c:
		return TrendDecreasing
	case a <= b && b <= c:
		return TrendIncreasing
	}
	return TrendFluctuating
}

// Analyze reports feedback ratios per trigger reason.
func Analyze(records []Record) Analysis {
	a := Analysis{
		Total:    len(records),
		ByReason: make(map[string]ReasonCounts),
		Trend:    TrendOf(records),
	}
	if len(records) == 0 {
		a.Effectiveness = "unknown"
		return a
	}

	positive := 0
	for _, r := range records {
		reason := r.Reason
		if reason == "" {
			reason = "unknown"
		}
		rc := a.ByReason[reason]
		if r.Direction == Positive {
			positive++
			rc.Positive++
		} else {
			rc.Negative++
		}
		a.ByReason[reason] = rc
	}

	a.PositiveRatio = float64(positive) / float64(len(records))
	a.NegativeRatio = 1 - a.PositiveRatio

	switch {
	case a.PositiveRatio > 0.6:
		a.Effectiveness = "good"
	case a.PositiveRatio > 0.4:
		a.Effectiveness = "moderate"
	default:
		a.Effectiveness = "needs_improvement"
	}
	return a
}
