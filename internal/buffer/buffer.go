package buffer

import (
	"time"

	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/config"
)

const (
	functionWindow     = 3
	architectureWindow = 4
	highRecordScore    = 4
)

type record struct {
	change.Scored
	added time.Time
}

// Buffer is the bounded change accumulator. It is owned by a single
// goroutine and does no locking.
type Buffer struct {
	limits       config.LimitsConfig
	records      []record
	sum          int
	lastActivity time.Time
	lastTrigger  time.Time
}

// New returns an empty buffer.
func New(limits config.LimitsConfig) *Buffer {
	if limits.BufferCapacity <= 0 {
		limits.BufferCapacity = 10
	}
	return &Buffer{limits: limits}
}

// Append adds s, dropping the oldest record when the buffer is at capacity.
func (b *Buffer) Append(s change.Scored, now time.Time) {
	if len(b.records) >= b.limits.BufferCapacity {
		b.sum -= b.records[0].Score
		b.records = b.records[1:]
	}
	b.records = append(b.records, record{Scored: s, added: now})
	b.sum += s.Score
	b.lastActivity = now
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int { return len(b.records) }

// Score returns the rolling score sum.
func (b *Buffer) Score() int { return b.sum }

// Evaluate applies age eviction, the size and cooldown gates, and the
// trigger rules. When a rule fires the buffer is emptied and the released
// batch is returned; otherwise nil.
func (b *Buffer) Evaluate(now time.Time, threshold int) *Summary {
	b.evictOld(now)

	if len(b.records) < b.limits.MinBufferSize {
		return nil
	}
	if !b.lastTrigger.IsZero() && now.Sub(b.lastTrigger) < b.limits.Cooldown() {
		return nil
	}

	reason, ok := b.reason(now, threshold)
	if !ok {
		return nil
	}

	s := b.summarize(reason, b.priority(threshold), threshold)
	b.records = nil
	b.sum = 0
	b.lastTrigger = now
	return s
}

func (b *Buffer) evictOld(now time.Time) {
	maxAge := b.limits.MaxAge()
	if maxAge <= 0 {
		return
	}
	kept := b.records[:0]
	sum := 0
	for _, r := range b.records {
		if now.Sub(r.added) > maxAge {
			continue
		}
		kept = append(kept, r)
		sum += r.Score
	}
	// zero the tail so evicted records can be collected
	for i := len(kept); i < len(b.records); i++ {
		b.records[i] = record{}
	}
	b.records = kept
	b.sum = sum
}

func (b *Buffer) reason(now time.Time, threshold int) (Reason, bool) {
	switch {
	case b.sum >= threshold:
		return ReasonScoreThreshold, true
	case len(b.records) > 0 && now.Sub(b.lastActivity) >= b.limits.Idle():
		return ReasonIdleTimeout, true
	case b.functionCompletion():
		return ReasonFunctionCompletion, true
	case b.architecturalChange():
		return ReasonArchitecturalChange, true
	case len(b.records) >= b.limits.BufferThreshold:
		return ReasonBufferFull, true
	}
	return "", false
}

func (b *Buffer) recent(n int) []record {
	if len(b.records) <= n {
		return b.records
	}
	return b.records[len(b.records)-n:]
}

func (b *Buffer) functionCompletion() bool {
	for _, r := range b.recent(functionWindow) {
		if len(r.Details.FunctionsAdded) > 0 {
			return true
		}
	}
	return false
}

func (b *Buffer) architecturalChange() bool {
	var created, modified bool
	for _, r := range b.recent(architectureWindow) {
		switch r.Kind {
		case change.Created:
			created = true
		case change.Modified:
			modified = true
		}
	}
	return created && modified
}

func (b *Buffer) priority(threshold int) Priority {
	hasHigh := false
	for _, r := range b.records {
		if r.Score >= highRecordScore {
			hasHigh = true
			break
		}
	}
	switch {
	case float64(b.sum) >= 1.5*float64(threshold) || hasHigh:
		return PriorityHigh
	case b.sum >= threshold || b.functionCompletion():
		return PriorityMedium
	}
	return PriorityLow
}

func (b *Buffer) summarize(reason Reason, priority Priority, threshold int) *Summary {
	s := &Summary{
		TotalChanges:     len(b.records),
		Changes:          make([]Entry, 0, len(b.records)),
		ProcessingReason: reason,
		PriorityLevel:    priority,
		BufferScore:      b.sum,
		ScoreBreakdown: ScoreBreakdown{
			TotalScore:     b.sum,
			EventScores:    make([]EventScore, 0, len(b.records)),
			ScoreThreshold: threshold,
		},
	}

	files := make(map[string]bool)
	for _, r := range b.records {
		file := r.File()
		files[file] = true
		s.Changes = append(s.Changes, Entry{
			File:      file,
			Kind:      r.Kind,
			Details:   r.Details,
			Timestamp: r.Timestamp,
		})
		s.ScoreBreakdown.EventScores = append(s.ScoreBreakdown.EventScores, EventScore{
			File:      file,
			Kind:      r.Kind,
			Score:     r.Score,
			Timestamp: r.Timestamp,
		})
	}
	s.FilesAffected = len(files)
	return s
}

// Status reports the buffer state as of now.
func (b *Buffer) Status(now time.Time) Status {
	st := Status{
		Size:         len(b.records),
		Capacity:     b.limits.BufferCapacity,
		Score:        b.sum,
		LastActivity: b.lastActivity,
		LastTrigger:  b.lastTrigger,
	}
	if len(b.records) > 0 {
		st.OldestAge = now.Sub(b.records[0].added)
	}
	if !b.lastTrigger.IsZero() {
		if rem := b.limits.Cooldown() - now.Sub(b.lastTrigger); rem > 0 {
			st.CooldownRemaining = rem
		}
	}
	return st
}

// Reset empties the buffer without recording a trigger.
func (b *Buffer) Reset() {
	b.records = nil
	b.sum = 0
}
