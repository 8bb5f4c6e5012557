package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Mode values recorded for a session.
const (
	ModePlay = "play"
	ModeTest = "test"
)

// Session is one controller run.
type Session struct {
	ID        string
	Variant   string
	Camera    int
	Mode      string
	StartedAt time.Time
	EndedAt   *time.Time
	Frames    int
	Presses   int
	Reason    string
}

// SessionRepository provides operations for controller sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. An empty ID is filled with a fresh UUID and
// a zero StartedAt with the current time.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, variant, camera, mode, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Variant, sess.Camera, sess.Mode, sess.StartedAt,
	)
	return err
}

// Finish records the end of a session along with its counters.
func (r *SessionRepository) Finish(id string, endedAt time.Time, frames, presses int, reason string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, presses = ?, reason = ?
		 WHERE id = ?`,
		endedAt, frames, presses, reason, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

const sessionColumns = `id, variant, camera, mode, started_at, ended_at, frames, presses, reason`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.Variant, &sess.Camera, &sess.Mode,
		&sess.StartedAt, &ended, &sess.Frames, &sess.Presses, &sess.Reason); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions first. A limit of zero or less
// returns every session.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// AddActionCounts adds per-action fire counts to a session.
func (r *SessionRepository) AddActionCounts(id string, counts map[string]int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for action, n := range counts {
		if _, err := tx.Exec(
			`INSERT INTO session_actions (session_id, action, count) VALUES (?, ?, ?)
			 ON CONFLICT(session_id, action) DO UPDATE SET count = count + excluded.count`,
			id, action, n,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ActionCounts returns per-action fire counts for a session.
func (r *SessionRepository) ActionCounts(id string) (map[string]int, error) {
	rows, err := r.db.Query(`SELECT action, count FROM session_actions WHERE session_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	return counts, rows.Err()
}

// Delete removes a session and its action counts.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
