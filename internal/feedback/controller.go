package feedback

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/config"
	"github.com/suykerbuyk/blue/internal/sanitize"
)

// maxPending bounds how many surfaced interventions wait for feedback.
const maxPending = 32

// maxStoredText is how much of the user's text a record keeps.
const maxStoredText = 200

// Recorder persists consumed feedback.
type Recorder interface {
	RecordFeedback(Record) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRecorder persists every consumed piece of feedback.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// Controller owns the adaptive threshold. It is safe for concurrent use:
// the pipeline reads the threshold while the feedback reader writes it.
type Controller struct {
	mu      sync.Mutex
	cfg     config.FeedbackConfig
	initial int
	current int
	pending []Pending
	history []Record

	now func() time.Time
	rec Recorder
	log *zap.Logger
}

// NewController starts at initial, clamped into the configured bounds.
func NewController(cfg config.FeedbackConfig, initial int, opts ...Option) *Controller {
	c := &Controller{
		cfg: cfg,
		now: time.Now,
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.initial = c.clamp(initial)
	c.current = c.initial
	return c
}

func (c *Controller) clamp(v int) int {
	if v < c.cfg.MinScoreThreshold {
		return c.cfg.MinScoreThreshold
	}
	if v > c.cfg.MaxScoreThreshold {
		return c.cfg.MaxScoreThreshold
	}
	return v
}

// Enabled reports whether feedback can move the threshold.
func (c *Controller) Enabled() bool {
	return c.cfg.EnableAdaptiveLearning
}

// RegisterPending opens the feedback window for a surfaced batch and returns
// its id.
func (c *Controller) RegisterPending(s *buffer.Summary) string {
	now := c.now()
	p := Pending{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(c.cfg.Window()),
	}
	if s != nil {
		p.Score = s.BufferScore
		p.Reason = string(s.ProcessingReason)
		p.Priority = string(s.PriorityLevel)
		p.Files = s.FilesAffected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneExpired(now)
	c.pending = append(c.pending, p)
	if len(c.pending) > maxPending {
		c.pending = c.pending[len(c.pending)-maxPending:]
	}
	return p.ID
}

func (c *Controller) pruneExpired(now time.Time) {
	kept := c.pending[:0]
	for _, p := range c.pending {
		if now.Before(p.ExpiresAt) {
			kept = append(kept, p)
		}
	}
	c.pending = kept
}

// ProcessFeedback applies text to the newest open intervention. It returns
// false when learning is disabled, the text carries no sentiment, or no
// intervention is waiting.
func (c *Controller) ProcessFeedback(text string) bool {
	if !c.cfg.EnableAdaptiveLearning {
		return false
	}
	dir, ok := Classify(text)
	if !ok {
		return false
	}

	now := c.now()

	c.mu.Lock()
	idx := -1
	for i := len(c.pending) - 1; i >= 0; i-- {
		if now.Before(c.pending[i].ExpiresAt) {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.pruneExpired(now)
		c.mu.Unlock()
		return false
	}
	p := c.pending[idx]
	c.pending = append(c.pending[:idx], c.pending[idx+1:]...)

	old := c.current
	step := c.cfg.ThresholdAdjustment
	if dir == Positive {
		c.current = c.clamp(old - step)
	} else {
		c.current = c.clamp(old + step)
	}

	rec := Record{
		ID:           uuid.NewString(),
		Timestamp:    now,
		Direction:    dir,
		Text:         sanitize.Truncate(sanitize.Redact(text), maxStoredText),
		OldThreshold: old,
		NewThreshold: c.current,
		Score:        p.Score,
		Reason:       p.Reason,
		PendingID:    p.ID,
	}
	c.history = append(c.history, rec)
	if limit := c.cfg.HistoryLimit; limit > 0 && len(c.history) > limit {
		c.history = append([]Record(nil), c.history[len(c.history)-limit:]...)
	}
	r := c.rec
	c.mu.Unlock()

	c.log.Info("feedback applied",
		zap.String("direction", string(dir)),
		zap.Int("old_threshold", old),
		zap.Int("new_threshold", rec.NewThreshold))

	if r != nil {
		if err := r.RecordFeedback(rec); err != nil {
			c.log.Warn("record feedback", zap.Error(err))
		}
	}
	return true
}

// CurrentThreshold returns the threshold the buffer should use now.
func (c *Controller) CurrentThreshold() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Restore sets the current threshold, clamped, without recording feedback.
func (c *Controller) Restore(threshold int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.clamp(threshold)
}

// Reset returns the threshold to its initial value.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.initial
}

// Clear drops history and pending interventions and resets the threshold.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.pending = nil
	c.current = c.initial
}

// PendingCount returns how many interventions can still receive feedback.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneExpired(c.now())
	return len(c.pending)
}

// History returns a copy of the in-memory feedback history.
func (c *Controller) History() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.history...)
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeStats(c.history, c.initial, c.current)
}

func (c *Controller) Export() Export {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Export{
		History:  append([]Record(nil), c.history...),
		Stats:    ComputeStats(c.history, c.initial, c.current),
		Analysis: Analyze(c.history),
	}
}
