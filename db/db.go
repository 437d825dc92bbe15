// Package db records link-quality samples to sqlite so control links can be
// characterised offline with cmd/link-report.
package db

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
	_ "modernc.org/sqlite"
)

type LinkDB struct {
	*sql.DB
}

// OpenLinkDB opens the sqlite database at path without touching the schema.
// Use this together with MigrateUp when managing the schema explicitly.
func OpenLinkDB(path string) (*LinkDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &LinkDB{db}, nil
}

// NewLinkDB opens the sqlite database at path and ensures the baseline
// schema exists.
func NewLinkDB(path string) (*LinkDB, error) {
	db, err := OpenLinkDB(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS link_sessions (
			session_id TEXT PRIMARY KEY,
			local_addr TEXT NOT NULL,
			target_rate_hz DOUBLE NOT NULL,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS link_samples (
			sample_id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			poll_micros INTEGER NOT NULL,
			timed_out INTEGER NOT NULL DEFAULT 0,
			received_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES link_sessions(session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_link_samples_session ON link_samples(session_id);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// StartSession registers a new recording session and returns its ID.
func (db *LinkDB) StartSession(localAddr string, targetRateHz float64) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO link_sessions (session_id, local_addr, target_rate_hz) VALUES (?, ?, ?)",
		id, localAddr, targetRateHz,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordSample stores the outcome of one poll session. For timeouts, seq and
// bytes are recorded as zero.
func (db *LinkDB) RecordSample(sessionID string, seq uint32, bytes int, pollTime time.Duration, timedOut bool) error {
	_, err := db.Exec(
		"INSERT INTO link_samples (session_id, sequence, bytes, poll_micros, timed_out) VALUES (?, ?, ?, ?, ?)",
		sessionID, int64(seq), bytes, pollTime.Microseconds(), timedOut,
	)
	return err
}

// Sample is one recorded poll outcome.
type Sample struct {
	Sequence   uint32
	Bytes      int
	PollMicros int64
	TimedOut   bool
	ReceivedAt time.Time
}

// Samples returns all samples for a session in arrival order.
func (db *LinkDB) Samples(sessionID string) ([]Sample, error) {
	rows, err := db.Query(`
		SELECT sequence, bytes, poll_micros, timed_out, received_at
		FROM link_samples WHERE session_id = ? ORDER BY sample_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var seq int64
		if err := rows.Scan(&seq, &s.Bytes, &s.PollMicros, &s.TimedOut, &s.ReceivedAt); err != nil {
			return nil, err
		}
		s.Sequence = uint32(seq)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// SessionInfo describes a recorded session.
type SessionInfo struct {
	SessionID    string
	LocalAddr    string
	TargetRateHz float64
	StartedAt    time.Time
}

// Sessions lists recorded sessions, newest first.
func (db *LinkDB) Sessions() ([]SessionInfo, error) {
	rows, err := db.Query(`
		SELECT session_id, local_addr, target_rate_hz, started_at
		FROM link_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var s SessionInfo
		if err := rows.Scan(&s.SessionID, &s.LocalAddr, &s.TargetRateHz, &s.StartedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// SessionSummary condenses a session's samples into link-quality figures.
// Poll-time statistics cover captured packets only.
type SessionSummary struct {
	SessionID string
	Samples   int
	Captured  int
	Timeouts  int
	FirstSeq  uint32
	LastSeq   uint32
	// Missed is the number of sequence numbers inside the observed span
	// that were never captured (dropped, reordered past the window, or
	// superseded by a fresher packet mid-poll).
	Missed int64

	PollMeanMicros   float64
	PollStdDevMicros float64
	PollP95Micros    float64
}

// Summarise computes the SessionSummary for a recorded session.
func (db *LinkDB) Summarise(sessionID string) (*SessionSummary, error) {
	samples, err := db.Samples(sessionID)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("db: session %s has no samples", sessionID)
	}

	summary := &SessionSummary{SessionID: sessionID, Samples: len(samples)}

	var pollTimes []float64
	seen := make(map[uint32]bool)
	first := true
	for _, s := range samples {
		if s.TimedOut {
			summary.Timeouts++
			continue
		}
		summary.Captured++
		pollTimes = append(pollTimes, float64(s.PollMicros))
		seen[s.Sequence] = true
		if first || s.Sequence < summary.FirstSeq {
			summary.FirstSeq = s.Sequence
		}
		if first || s.Sequence > summary.LastSeq {
			summary.LastSeq = s.Sequence
		}
		first = false
	}

	if summary.Captured > 0 {
		span := int64(summary.LastSeq) - int64(summary.FirstSeq) + 1
		summary.Missed = span - int64(len(seen))

		sort.Float64s(pollTimes)
		summary.PollMeanMicros = stat.Mean(pollTimes, nil)
		summary.PollStdDevMicros = stat.StdDev(pollTimes, nil)
		summary.PollP95Micros = stat.Quantile(0.95, stat.Empirical, pollTimes, nil)
	}

	return summary, nil
}
