// Package feedback adapts the score threshold from user reactions to
// surfaced interventions.
package feedback

import "time"

// Direction is the polarity of a piece of feedback.
type Direction string

const (
	Positive Direction = "positive"
	Negative Direction = "negative"
)

// Trend summarizes how the threshold moved over recent feedback.
type Trend string

const (
	TrendStable      Trend = "stable"
	TrendIncreasing  Trend = "increasing"
	TrendDecreasing  Trend = "decreasing"
	TrendFluctuating Trend = "fluctuating"
)

// Pending is a surfaced intervention that can still receive feedback.
type Pending struct {
	ID        string
	Score     int
	Reason    string
	Priority  string
	Files     int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Record is one consumed piece of feedback.
type Record struct {
	ID           string    `json:"id" yaml:"id"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Direction    Direction `json:"direction" yaml:"direction"`
	Text         string    `json:"text" yaml:"text"`
	OldThreshold int       `json:"old_threshold" yaml:"old_threshold"`
	NewThreshold int       `json:"new_threshold" yaml:"new_threshold"`
	Score        int       `json:"comment_score" yaml:"comment_score"`
	Reason       string    `json:"comment_reason" yaml:"comment_reason"`
	PendingID    string    `json:"intervention_id" yaml:"intervention_id"`
}

// Stats are the aggregate feedback counters.
type Stats struct {
	Total        int        `json:"total_feedback" yaml:"total_feedback"`
	Positive     int        `json:"positive_feedback" yaml:"positive_feedback"`
	Negative     int        `json:"negative_feedback" yaml:"negative_feedback"`
	Current      int        `json:"current_threshold" yaml:"current_threshold"`
	Initial      int        `json:"initial_threshold" yaml:"initial_threshold"`
	Delta        int        `json:"threshold_change" yaml:"threshold_change"`
	Trend        Trend      `json:"trend" yaml:"trend"`
	LastFeedback *time.Time `json:"last_feedback_time,omitempty" yaml:"last_feedback_time,omitempty"`
}

// ReasonCounts splits feedback for one trigger reason.
type ReasonCounts struct {
	Positive int `json:"positive" yaml:"positive"`
	Negative int `json:"negative" yaml:"negative"`
}

// Analysis describes feedback patterns across trigger reasons.
type Analysis struct {
	Total         int                     `json:"total_entries" yaml:"total_entries"`
	PositiveRatio float64                 `json:"positive_ratio" yaml:"positive_ratio"`
	NegativeRatio float64                 `json:"negative_ratio" yaml:"negative_ratio"`
	ByReason      map[string]ReasonCounts `json:"common_triggers" yaml:"common_triggers"`
	Trend         Trend                   `json:"threshold_trend" yaml:"threshold_trend"`
	Effectiveness string                  `json:"effectiveness" yaml:"effectiveness"`
}

// Export bundles everything `blue stats` can print.
type Export struct {
	History  []Record `json:"feedback_history" yaml:"feedback_history"`
	Stats    Stats    `json:"current_state" yaml:"current_state"`
	Analysis Analysis `json:"analysis" yaml:"analysis"`
}
