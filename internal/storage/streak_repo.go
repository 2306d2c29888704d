package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type StreakRepo struct {
	db *sql.DB
}

func NewStreakRepo(db *sql.DB) *StreakRepo {
	return &StreakRepo{db: db}
}

func (r *StreakRepo) GetFirst(ctx context.Context) (*Streak, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, task_days, focus_days, last_task_day, last_focus_day
		FROM streaks
		LIMIT 1
	`)

	var (
		s        Streak
		taskDay  sql.NullString
		focusDay sql.NullString
	)
	if err := row.Scan(&s.ID, &s.TaskDays, &s.FocusDays, &taskDay, &focusDay); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("streak get: %w", err)
	}
	if taskDay.Valid {
		v := taskDay.String
		s.LastTaskDay = &v
	}
	if focusDay.Valid {
		v := focusDay.String
		s.LastFocusDay = &v
	}
	return &s, nil
}

func (r *StreakRepo) GetOrCreate(ctx context.Context) (*Streak, error) {
	s, err := r.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO streaks (id) VALUES (?)`, MainUserID); err != nil {
		return nil, fmt.Errorf("streak insert: %w", err)
	}
	return r.GetFirst(ctx)
}

func (r *StreakRepo) Update(ctx context.Context, s *Streak) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE streaks
		SET task_days = ?, focus_days = ?, last_task_day = ?, last_focus_day = ?
		WHERE id = ?
	`, s.TaskDays, s.FocusDays, s.LastTaskDay, s.LastFocusDay, s.ID)
	if err != nil {
		return fmt.Errorf("streak update: %w", err)
	}
	return nil
}
