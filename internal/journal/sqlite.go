// Package journal keeps an append-only SQLite log of timer sessions and the
// phase changes each one produced.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements core.Journal on SQLite.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

var _ core.Journal = (*Store)(nil)

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	core.Session
	Completed int `json:"completed"`
	Changes   int `json:"change_count"`
}

// Open opens or creates the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, journalError("opening database", err)
	}

	s := &Store{path: path, db: db}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return journalError("applying migration v1", err)
		}
	}
	return nil
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// BeginSession inserts a new session row. The ID must be a UUID, see
// NewSessionID.
func (s *Store) BeginSession(ctx context.Context, session core.Session) error {
	if session.ID == "" {
		return core.ErrValidation(core.CodeInvalidConfig, "session id is required")
	}
	if _, err := uuid.Parse(session.ID); err != nil {
		return core.ErrValidation(core.CodeInvalidConfig, "session id must be a UUID").WithCause(err)
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, task, work_ns, break_ns, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.Task, int64(session.Work), int64(session.Break), formatTime(session.StartedAt))
	if err != nil {
		return journalError("inserting session", err)
	}
	return nil
}

// Record appends a phase change to a session.
func (s *Store) Record(ctx context.Context, sessionID string, change core.PhaseChange) error {
	if change.At.IsZero() {
		change.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO phase_changes (session_id, seq, previous, phase, wait_ns, completed, at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?
		FROM phase_changes WHERE session_id = ?`,
		sessionID, string(change.Previous), string(change.Phase), int64(change.Wait),
		change.Completed, formatTime(change.At), sessionID)
	if err != nil {
		return journalError("recording phase change", err)
	}
	return nil
}

// EndSession stamps the session's end time.
func (s *Store) EndSession(ctx context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ? WHERE id = ?", formatTime(at), sessionID)
	if err != nil {
		return journalError("ending session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound("session", sessionID)
	}
	return nil
}

// Sessions lists the most recent sessions first. limit <= 0 lists all.
func (s *Store) Sessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.task, s.work_ns, s.break_ns, s.started_at, s.ended_at,
		       COALESCE(MAX(c.completed), 0), COUNT(c.seq)
		FROM sessions s
		LEFT JOIN phase_changes c ON c.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, journalError("listing sessions", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum             SessionSummary
			workNS, breakNS int64
			started         string
			ended           sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.Task, &workNS, &breakNS, &started, &ended,
			&sum.Completed, &sum.Changes); err != nil {
			return nil, journalError("scanning session", err)
		}
		sum.Work = time.Duration(workNS)
		sum.Break = time.Duration(breakNS)
		if sum.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if ended.Valid {
			at, err := parseTime(ended.String)
			if err != nil {
				return nil, err
			}
			sum.EndedAt = &at
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, journalError("listing sessions", err)
	}
	return out, nil
}

// Changes returns the phase changes of a session in production order.
func (s *Store) Changes(ctx context.Context, sessionID string) ([]core.PhaseChange, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound("session", sessionID)
	}
	if err != nil {
		return nil, journalError("looking up session", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT previous, phase, wait_ns, completed, at
		FROM phase_changes WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, journalError("listing phase changes", err)
	}
	defer rows.Close()

	var out []core.PhaseChange
	for rows.Next() {
		var (
			previous, phase, at string
			waitNS              int64
			change              core.PhaseChange
		)
		if err := rows.Scan(&previous, &phase, &waitNS, &change.Completed, &at); err != nil {
			return nil, journalError("scanning phase change", err)
		}
		if change.Previous, err = core.ParsePhase(previous); err != nil {
			return nil, err
		}
		if change.Phase, err = core.ParsePhase(phase); err != nil {
			return nil, err
		}
		change.Wait = time.Duration(waitNS)
		if change.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, change)
	}
	if err := rows.Err(); err != nil {
		return nil, journalError("listing phase changes", err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, journalError("parsing timestamp", err)
	}
	return t, nil
}

func journalError(op string, err error) error {
	return core.ErrJournal(op, err)
}
