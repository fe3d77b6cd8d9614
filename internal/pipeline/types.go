// Package pipeline wires scoring, buffering, decision and feedback into a
// single coordinator loop.
package pipeline

import (
	"context"
	"time"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/decision"
)

// Scorer turns a notification into a scored change.
type Scorer interface {
	ScoreNotification(change.Notification) change.Scored
}

// Decider confirms a released batch.
type Decider interface {
	Decide(ctx context.Context, s *buffer.Summary) decision.Verdict
}

// Presenter shows an accepted batch to the user.
type Presenter interface {
	Present(ctx context.Context, b Batch) error
}

// Thresholds supplies the adaptive threshold and opens feedback windows.
type Thresholds interface {
	CurrentThreshold() int
	RegisterPending(s *buffer.Summary) string
}

// Recorder persists released batches and their verdicts.
type Recorder interface {
	RecordTrigger(s *buffer.Summary, at time.Time) (string, error)
	RecordVerdict(triggerID string, v decision.Verdict, at time.Time) error
}

// Batch is an accepted batch handed to the Presenter.
type Batch struct {
	Summary     *buffer.Summary
	Verdict     decision.Verdict
	Opportunity decision.Opportunity
	PendingID   string
}

// Stats counts coordinator activity.
type Stats struct {
	Notifications int `json:"notifications" yaml:"notifications"`
	Triggers      int `json:"triggers" yaml:"triggers"`
	Accepted      int `json:"accepted" yaml:"accepted"`
	Rejected      int `json:"rejected" yaml:"rejected"`
	Errors        int `json:"errors" yaml:"errors"`
}
