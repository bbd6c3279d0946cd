package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// retentionMonths is how far back sessions are kept. Older rows are
// pruned on every read and append.
const retentionMonths = 3

// AppendSession inserts a session, pruning expired rows first. If the
// insert fails because the database is full, the oldest session is
// evicted and the insert retried once. Any other insert error is
// returned as is.
func (s *Store) AppendSession(sess Session) error {
	if err := s.pruneSessions(time.Now()); err != nil {
		return err
	}

	err := s.insertSession(sess)
	if err == nil {
		return nil
	}
	if !isDatabaseFull(err) {
		return fmt.Errorf("append session: %w", err)
	}

	// Make room and retry once.
	if evictErr := s.evictOldestSession(); evictErr != nil {
		return fmt.Errorf("append session: %w", err)
	}
	if err := s.insertSession(sess); err != nil {
		return fmt.Errorf("append session after evict: %w", err)
	}
	return nil
}

func (s *Store) insertSession(sess Session) error {
	var completedAt sql.NullString
	if sess.CompletedAt != nil {
		completedAt = sql.NullString{String: sess.CompletedAt.Format(time.RFC3339), Valid: true}
	}
	var taskID, taskTitle sql.NullString
	if sess.TaskID != nil {
		taskID = sql.NullString{String: *sess.TaskID, Valid: true}
	}
	if sess.TaskTitle != nil {
		taskTitle = sql.NullString{String: *sess.TaskTitle, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, task_id, task_title, started_at, completed_at, duration, interrupted, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, taskID, taskTitle, sess.StartedAt.Format(time.RFC3339),
		completedAt, sess.Duration, boolToInt(sess.Interrupted), sess.Mode)
	return err
}

// ListSessions returns all retained sessions ordered oldest first,
// pruning expired rows on the way.
func (s *Store) ListSessions() ([]Session, error) {
	if err := s.pruneSessions(time.Now()); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, task_id, task_title, started_at, completed_at, duration, interrupted, mode
		FROM sessions
		ORDER BY started_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// pruneSessions deletes sessions that started before the retention
// cutoff. Rows with unparseable timestamps are deleted too.
func (s *Store) pruneSessions(now time.Time) error {
	cutoff := now.AddDate(0, -retentionMonths, 0)

	rows, err := s.db.Query("SELECT id, started_at FROM sessions")
	if err != nil {
		return fmt.Errorf("query sessions for prune: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var id, startedAt string
		if err := rows.Scan(&id, &startedAt); err != nil {
			return fmt.Errorf("scan session for prune: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, startedAt)
		if err != nil || ts.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
			return fmt.Errorf("prune session %s: %w", id, err)
		}
	}
	return nil
}

// isDatabaseFull reports whether err is sqlite's out-of-space result
// code. Only that condition warrants evicting history to make room.
func isDatabaseFull(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_FULL
}

func (s *Store) evictOldestSession() error {
	_, err := s.db.Exec(`
		DELETE FROM sessions WHERE id = (
			SELECT id FROM sessions ORDER BY started_at ASC LIMIT 1
		)
	`)
	if err != nil {
		return fmt.Errorf("evict oldest session: %w", err)
	}
	return nil
}

func scanSession(rows *sql.Rows) (Session, error) {
	var sess Session
	var taskID, taskTitle, completedAt sql.NullString
	var startedAt string
	var interrupted int

	err := rows.Scan(&sess.ID, &taskID, &taskTitle, &startedAt,
		&completedAt, &sess.Duration, &interrupted, &sess.Mode)
	if err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}

	if taskID.Valid {
		sess.TaskID = &taskID.String
	}
	if taskTitle.Valid {
		sess.TaskTitle = &taskTitle.String
	}
	// A parse failure leaves StartedAt zero; callers treat that as
	// never matching any date.
	if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
		sess.StartedAt = ts
	}
	if completedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			sess.CompletedAt = &ts
		}
	}
	sess.Interrupted = interrupted != 0
	return sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
