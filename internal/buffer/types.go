// Package buffer accumulates scored changes and decides when a batch is
// ready to be surfaced.
package buffer

import (
	"time"

	"github.com/suykerbuyk/blue/internal/change"
)

// Reason is why a batch was released.
type Reason string

const (
	ReasonScoreThreshold      Reason = "score_threshold"
	ReasonIdleTimeout         Reason = "idle_timeout"
	ReasonFunctionCompletion  Reason = "function_completion"
	ReasonArchitecturalChange Reason = "architectural_change"
	ReasonBufferFull          Reason = "buffer_full"
)

// Priority is the coarse urgency of a released batch.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Summary is the batch handed downstream when the buffer triggers.
// Field names are part of the prompt contract.
type Summary struct {
	TotalChanges     int            `json:"total_changes"`
	FilesAffected    int            `json:"files_affected"`
	Changes          []Entry        `json:"changes"`
	ProcessingReason Reason         `json:"processing_reason"`
	PriorityLevel    Priority       `json:"priority_level"`
	BufferScore      int            `json:"buffer_score"`
	ScoreBreakdown   ScoreBreakdown `json:"score_breakdown"`
}

// Entry is one change inside a Summary.
type Entry struct {
	File      string         `json:"file"`
	Kind      change.Kind    `json:"kind"`
	Details   change.Details `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

type ScoreBreakdown struct {
	TotalScore     int          `json:"total_score"`
	EventScores    []EventScore `json:"event_scores"`
	ScoreThreshold int          `json:"score_threshold"`
}

type EventScore struct {
	File      string      `json:"file"`
	Kind      change.Kind `json:"kind"`
	Score     int         `json:"score"`
	Timestamp time.Time   `json:"timestamp"`
}

// Status is a point-in-time view of the buffer.
type Status struct {
	Size              int           `json:"size"`
	Capacity          int           `json:"capacity"`
	Score             int           `json:"score"`
	LastActivity      time.Time     `json:"last_activity"`
	LastTrigger       time.Time     `json:"last_trigger"`
	OldestAge         time.Duration `json:"oldest_age"`
	CooldownRemaining time.Duration `json:"cooldown_remaining"`
}
