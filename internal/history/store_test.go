package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/decision"
	"github.com/suykerbuyk/blue/internal/feedback"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func summary(reason buffer.Reason, score int) *buffer.Summary {
	return &buffer.Summary{
		TotalChanges:     3,
		FilesAffected:    2,
		ProcessingReason: reason,
		PriorityLevel:    buffer.PriorityMedium,
		BufferScore:      score,
		ScoreBreakdown:   buffer.ScoreBreakdown{TotalScore: score, ScoreThreshold: 5},
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	s := tempStore(t)

	for i, th := range []int{4, 5, 6} {
		dir := feedback.Negative
		if i == 0 {
			dir = feedback.Positive
		}
		require.NoError(t, s.RecordFeedback(feedback.Record{
			ID:           "",
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			Direction:    dir,
			Text:         "text",
			OldThreshold: th - 1,
			NewThreshold: th,
			Score:        7,
			Reason:       "score_threshold",
			PendingID:    "p",
		}))
	}

	all, err := s.Feedback(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, feedback.Positive, all[0].Direction)
	assert.Equal(t, 4, all[0].NewThreshold)
	assert.True(t, all[0].Timestamp.Equal(base))
	assert.NotEmpty(t, all[0].ID)

	last2, err := s.Feedback(2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, 5, last2[0].NewThreshold, "oldest first")
	assert.Equal(t, 6, last2[1].NewThreshold)
}

func TestLastThreshold(t *testing.T) {
	s := tempStore(t)

	_, ok, err := s.LastThreshold()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RecordFeedback(feedback.Record{Timestamp: base, Direction: feedback.Negative, OldThreshold: 5, NewThreshold: 6}))
	require.NoError(t, s.RecordFeedback(feedback.Record{Timestamp: base, Direction: feedback.Negative, OldThreshold: 6, NewThreshold: 7}))

	th, ok, err := s.LastThreshold()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, th)
}

func TestTriggerStats(t *testing.T) {
	s := tempStore(t)

	id1, err := s.RecordTrigger(summary(buffer.ReasonScoreThreshold, 6), base)
	require.NoError(t, err)
	id2, err := s.RecordTrigger(summary(buffer.ReasonIdleTimeout, 2), base)
	require.NoError(t, err)
	id3, err := s.RecordTrigger(summary(buffer.ReasonScoreThreshold, 9), base)
	require.NoError(t, err)
	_, err = s.RecordTrigger(summary(buffer.ReasonBufferFull, 4), base)
	require.NoError(t, err)

	require.NoError(t, s.RecordVerdict(id1, decision.Verdict{Outcome: decision.Accept, Accepted: true, Confidence: 8}, base))
	require.NoError(t, s.RecordVerdict(id2, decision.Verdict{Outcome: decision.Reject}, base))
	require.NoError(t, s.RecordVerdict(id3, decision.Verdict{Outcome: decision.Error, Reason: "timeout"}, base))

	st, err := s.TriggerStats()
	require.NoError(t, err)
	assert.Equal(t, 4, st.Triggers)
	assert.Equal(t, map[string]int{"score_threshold": 2, "idle_timeout": 1, "buffer_full": 1}, st.ByReason)
	assert.Equal(t, 1, st.Accepted)
	assert.Equal(t, 1, st.Rejected)
	assert.Equal(t, 1, st.Errors)
}

func TestTriggerStats_Empty(t *testing.T) {
	s := tempStore(t)
	st, err := s.TriggerStats()
	require.NoError(t, err)
	assert.Zero(t, st.Triggers)
	assert.Zero(t, st.Accepted)
}

func TestRecordTrigger_Nil(t *testing.T) {
	s := tempStore(t)
	_, err := s.RecordTrigger(nil, base)
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	s := tempStore(t)
	id, err := s.RecordTrigger(summary(buffer.ReasonScoreThreshold, 6), base)
	require.NoError(t, err)
	require.NoError(t, s.RecordVerdict(id, decision.Verdict{Outcome: decision.Accept, Accepted: true}, base))
	require.NoError(t, s.RecordFeedback(feedback.Record{Timestamp: base, Direction: feedback.Positive, NewThreshold: 4}))

	require.NoError(t, s.Clear())

	recs, err := s.Feedback(0)
	require.NoError(t, err)
	assert.Empty(t, recs)
	st, err := s.TriggerStats()
	require.NoError(t, err)
	assert.Zero(t, st.Triggers)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordFeedback(feedback.Record{Timestamp: base, Direction: feedback.Negative, OldThreshold: 5, NewThreshold: 6}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	th, ok, err := s.LastThreshold()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, th)
}

func TestStoreIsRecorder(t *testing.T) {
	var _ feedback.Recorder = (*Store)(nil)
}
