package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/config"
	"github.com/suykerbuyk/blue/internal/decision"
)

type result struct {
	summary   *buffer.Summary
	triggerID string
	verdict   decision.Verdict
}

// Coordinator owns the buffer and runs every trigger evaluation on one
// goroutine. At most one decision is in flight; notifications keep being
// buffered while it runs.
type Coordinator struct {
	limits     config.LimitsConfig
	scorer     Scorer
	decider    Decider
	thresholds Thresholds
	presenter  Presenter
	recorder   Recorder
	now        func() time.Time
	log        *zap.Logger

	buf      *buffer.Buffer
	inFlight bool
	results  chan result
	wg       sync.WaitGroup

	mu    sync.Mutex
	stats Stats
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now for buffer timestamps and trigger evaluation.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithRecorder persists every released batch and its verdict.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// NewCoordinator builds a Coordinator around an empty buffer.
func NewCoordinator(limits config.LimitsConfig, scorer Scorer, decider Decider, thresholds Thresholds, presenter Presenter, opts ...Option) *Coordinator {
	c := &Coordinator{
		limits:     limits,
		scorer:     scorer,
		decider:    decider,
		thresholds: thresholds,
		presenter:  presenter,
		now:        time.Now,
		log:        zap.NewNop(),
		buf:        buffer.New(limits),
		results:    make(chan result, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Run consumes notifications until ctx is cancelled. A closed input channel
// stops intake but idle polling continues. Run waits for an in-flight
// decision before returning.
func (c *Coordinator) Run(ctx context.Context, in <-chan change.Notification) error {
	ticker := time.NewTicker(c.limits.PollInterval())
	defer ticker.Stop()
	defer c.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case n, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			c.ingest(n)
			c.evaluate(ctx)

		case <-ticker.C:
			c.evaluate(ctx)

		case r := <-c.results:
			c.inFlight = false
			c.finish(ctx, r)
		}
	}
}

func (c *Coordinator) ingest(n change.Notification) {
	if !n.Kind.Valid() {
		c.log.Warn("ignoring notification with unknown kind",
			zap.String("path", n.Path), zap.String("kind", string(n.Kind)))
		return
	}
	s := c.scorer.ScoreNotification(n)
	c.buf.Append(s, c.now())

	c.mu.Lock()
	c.stats.Notifications++
	c.mu.Unlock()

	c.log.Debug("scored change",
		zap.String("path", s.File()),
		zap.String("kind", string(s.Kind)),
		zap.Int("score", s.Score),
		zap.Int("buffer_score", c.buf.Score()),
		zap.Int("buffer_size", c.buf.Len()))
}

// evaluate releases a batch and starts its decision when the buffer is
// ready and no decision is already running.
func (c *Coordinator) evaluate(ctx context.Context) {
	if c.inFlight {
		return
	}
	now := c.now()
	threshold := c.thresholds.CurrentThreshold()
	s := c.buf.Evaluate(now, threshold)
	if s == nil {
		return
	}

	c.mu.Lock()
	c.stats.Triggers++
	c.mu.Unlock()

	c.log.Info("batch released",
		zap.String("reason", string(s.ProcessingReason)),
		zap.String("priority", string(s.PriorityLevel)),
		zap.Int("score", s.BufferScore),
		zap.Int("threshold", threshold),
		zap.Int("changes", s.TotalChanges))

	var triggerID string
	if c.recorder != nil {
		id, err := c.recorder.RecordTrigger(s, now)
		if err != nil {
			c.log.Warn("record trigger", zap.Error(err))
		}
		triggerID = id
	}

	c.inFlight = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		v := c.decider.Decide(ctx, s)
		// Capacity one and a single in-flight decision: never blocks.
		c.results <- result{summary: s, triggerID: triggerID, verdict: v}
	}()
}

func (c *Coordinator) finish(ctx context.Context, r result) {
	opp := decision.Analyze(r.summary)
	fields := []zap.Field{
		zap.String("outcome", string(r.verdict.Outcome)),
		zap.Bool("accepted", r.verdict.Accepted),
		zap.Int("confidence", r.verdict.Confidence),
		zap.Int("heuristic_confidence", opp.Confidence),
		zap.Strings("opportunities", opp.Opportunities),
		zap.Strings("risks", opp.Risks),
	}
	if r.verdict.Err != nil {
		fields = append(fields, zap.Error(r.verdict.Err))
	}
	c.log.Info("decision", fields...)

	c.mu.Lock()
	switch {
	case r.verdict.Outcome == decision.Error:
		c.stats.Errors++
	case r.verdict.Accepted:
		c.stats.Accepted++
	default:
		c.stats.Rejected++
	}
	c.mu.Unlock()

	if c.recorder != nil && r.triggerID != "" {
		if err := c.recorder.RecordVerdict(r.triggerID, r.verdict, c.now()); err != nil {
			c.log.Warn("record verdict", zap.Error(err))
		}
	}

	if !r.verdict.Accepted {
		return
	}

	b := Batch{
		Summary:     r.summary,
		Verdict:     r.verdict,
		Opportunity: opp,
		PendingID:   c.thresholds.RegisterPending(r.summary),
	}
	if err := c.presenter.Present(ctx, b); err != nil {
		c.log.Warn("present batch", zap.Error(err))
	}
}
