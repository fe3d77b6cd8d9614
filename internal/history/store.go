// Package history persists released batches, decision verdicts and user
// feedback in a local SQLite database.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/decision"
	"github.com/suykerbuyk/blue/internal/feedback"
)

const schema = `
CREATE TABLE IF NOT EXISTS triggers (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	reason         TEXT NOT NULL,
	priority       TEXT NOT NULL,
	score          INTEGER NOT NULL,
	threshold      INTEGER NOT NULL,
	total_changes  INTEGER NOT NULL,
	files_affected INTEGER NOT NULL,
	summary_json   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS verdicts (
	trigger_id  TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	accepted    INTEGER NOT NULL,
	confidence  INTEGER NOT NULL,
	reason      TEXT,
	FOREIGN KEY (trigger_id) REFERENCES triggers(id)
);

CREATE TABLE IF NOT EXISTS feedback (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	created_at      TEXT NOT NULL,
	direction       TEXT NOT NULL,
	text            TEXT,
	old_threshold   INTEGER NOT NULL,
	new_threshold   INTEGER NOT NULL,
	comment_score   INTEGER NOT NULL,
	comment_reason  TEXT,
	intervention_id TEXT
);
`

// Store is the SQLite-backed history log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; the pipeline and the feedback reader share the handle.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordTrigger stores a released batch and returns its id.
func (s *Store) RecordTrigger(sum *buffer.Summary, at time.Time) (string, error) {
	if sum == nil {
		return "", fmt.Errorf("record trigger: nil summary")
	}
	raw, err := json.Marshal(sum)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO triggers (id, created_at, reason, priority, score, threshold, total_changes, files_affected, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, formatTime(at), string(sum.ProcessingReason), string(sum.PriorityLevel),
		sum.BufferScore, sum.ScoreBreakdown.ScoreThreshold, sum.TotalChanges, sum.FilesAffected, string(raw),
	)
	if err != nil {
		return "", fmt.Errorf("insert trigger: %w", err)
	}
	return id, nil
}

// RecordVerdict stores the decision for a trigger recorded earlier.
func (s *Store) RecordVerdict(triggerID string, v decision.Verdict, at time.Time) error {
	accepted := 0
	if v.Accepted {
		accepted = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO verdicts (trigger_id, created_at, outcome, accepted, confidence, reason)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(trigger_id) DO UPDATE SET
		   created_at = excluded.created_at, outcome = excluded.outcome,
		   accepted = excluded.accepted, confidence = excluded.confidence, reason = excluded.reason`,
		triggerID, formatTime(at), string(v.Outcome), accepted, v.Confidence, v.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	return nil
}

// RecordFeedback implements feedback.Recorder.
func (s *Store) RecordFeedback(r feedback.Record) error {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO feedback (id, created_at, direction, text, old_threshold, new_threshold, comment_score, comment_reason, intervention_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, formatTime(r.Timestamp), string(r.Direction), r.Text,
		r.OldThreshold, r.NewThreshold, r.Score, r.Reason, r.PendingID,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Feedback returns the most recent limit records, oldest first. A limit of
// zero or less returns everything.
func (s *Store) Feedback(limit int) ([]feedback.Record, error) {
	q := `SELECT id, created_at, direction, text, old_threshold, new_threshold, comment_score, comment_reason, intervention_id
	      FROM feedback ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []feedback.Record
	for rows.Next() {
		var (
			r                    feedback.Record
			created, dir         string
			text, reason, pendID sql.NullString
		)
		if err := rows.Scan(&r.ID, &created, &dir, &text, &r.OldThreshold, &r.NewThreshold, &r.Score, &reason, &pendID); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		r.Timestamp = parseTime(created)
		r.Direction = feedback.Direction(dir)
		r.Text = text.String
		r.Reason = reason.String
		r.PendingID = pendID.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// LastThreshold returns the threshold left by the most recent feedback.
// ok is false when no feedback has been recorded.
func (s *Store) LastThreshold() (threshold int, ok bool, err error) {
	err = s.db.QueryRow(`SELECT new_threshold FROM feedback ORDER BY seq DESC LIMIT 1`).Scan(&threshold)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query last threshold: %w", err)
	}
	return threshold, true, nil
}

// TriggerStats counts released batches and how they were decided.
func (s *Store) TriggerStats() (TriggerStats, error) {
	st := TriggerStats{ByReason: make(map[string]int)}

	rows, err := s.db.Query(`SELECT reason, COUNT(*) FROM triggers GROUP BY reason`)
	if err != nil {
		return st, fmt.Errorf("query triggers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return st, fmt.Errorf("scan triggers: %w", err)
		}
		st.ByReason[reason] = n
		st.Triggers += n
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate triggers: %w", err)
	}

	var accepted, rejected, errored sql.NullInt64
	err = s.db.QueryRow(
		`SELECT SUM(accepted = 1), SUM(accepted = 0 AND outcome != 'error'), SUM(outcome = 'error') FROM verdicts`,
	).Scan(&accepted, &rejected, &errored)
	if err != nil {
		return st, fmt.Errorf("query verdicts: %w", err)
	}
	st.Accepted = int(accepted.Int64)
	st.Rejected = int(rejected.Int64)
	st.Errors = int(errored.Int64)
	return st, nil
}

// Clear deletes every stored row.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"verdicts", "triggers", "feedback"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
