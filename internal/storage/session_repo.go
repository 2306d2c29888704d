package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Put(ctx context.Context, s *FocusSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO focus_sessions (id, label, task_id, category_id, started_at, ended_at, duration_min, type, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label, task_id = excluded.task_id, category_id = excluded.category_id,
			started_at = excluded.started_at, ended_at = excluded.ended_at,
			duration_min = excluded.duration_min, type = excluded.type, completed = excluded.completed
	`, s.ID, s.Label, s.TaskID, s.CategoryID, s.StartedAt, s.EndedAt, s.DurationMin, s.Type, boolToInt(s.Completed))
	if err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*FocusSession, error) {
	row := r.db.QueryRowContext(ctx, sessionSelect+` WHERE id = ?`, id)
	return scanSession(row)
}

// SumCompletedWorkMinutes totals duration across completed work sessions.
// Break sessions never count toward progression.
func (r *SessionRepo) SumCompletedWorkMinutes(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_min), 0)
		FROM focus_sessions
		WHERE type = 'work' AND completed = 1
	`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("session sum minutes: %w", err)
	}
	return n, nil
}

func (r *SessionRepo) ListAll(ctx context.Context) ([]FocusSession, error) {
	rows, err := r.db.QueryContext(ctx, sessionSelect+` ORDER BY started_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("session list: %w", err)
	}
	defer rows.Close()

	var out []FocusSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session rows: %w", err)
	}
	return out, nil
}

const sessionSelect = `
	SELECT id, label, task_id, category_id, started_at, ended_at, duration_min, type, completed
	FROM focus_sessions`

func scanSession(row scanner) (*FocusSession, error) {
	var (
		s          FocusSession
		label      sql.NullString
		taskID     sql.NullString
		categoryID sql.NullString
		endedAt    sql.NullTime
		completed  int
	)
	if err := row.Scan(&s.ID, &label, &taskID, &categoryID, &s.StartedAt, &endedAt, &s.DurationMin, &s.Type, &completed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("session scan: %w", err)
	}
	if label.Valid {
		v := label.String
		s.Label = &v
	}
	if taskID.Valid {
		v := taskID.String
		s.TaskID = &v
	}
	if categoryID.Valid {
		v := categoryID.String
		s.CategoryID = &v
	}
	if endedAt.Valid {
		v := endedAt.Time
		s.EndedAt = &v
	}
	s.Completed = completed != 0
	return &s, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
