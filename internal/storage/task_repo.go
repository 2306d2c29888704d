package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// Put upserts the full task row by id.
func (r *TaskRepo) Put(ctx context.Context, t *Task) error {
	recurrence, err := marshalNullable(t.Recurrence)
	if err != nil {
		return fmt.Errorf("marshal recurrence: %w", err)
	}
	reward, err := marshalNullable(t.Reward)
	if err != nil {
		return fmt.Errorf("marshal reward: %w", err)
	}
	var tags *string
	if len(t.Tags) > 0 {
		data, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		s := string(data)
		tags = &s
	}
	var subtasks *string
	if len(t.Subtasks) > 0 {
		data, err := json.Marshal(t.Subtasks)
		if err != nil {
			return fmt.Errorf("marshal subtasks: %w", err)
		}
		s := string(data)
		subtasks = &s
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, title, category_id, status, priority, deadline_at, recurrence,
			estimate_minutes, tags, notes, subtasks, created_at, updated_at, completed_at, reward
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, category_id = excluded.category_id,
			status = excluded.status, priority = excluded.priority,
			deadline_at = excluded.deadline_at, recurrence = excluded.recurrence,
			estimate_minutes = excluded.estimate_minutes, tags = excluded.tags,
			notes = excluded.notes, subtasks = excluded.subtasks,
			updated_at = excluded.updated_at, completed_at = excluded.completed_at,
			reward = excluded.reward
	`, t.ID, t.Title, t.CategoryID, t.Status, t.Priority, t.DeadlineAt, recurrence,
		t.EstimateMinutes, tags, t.Notes, subtasks, t.CreatedAt, t.UpdatedAt, t.CompletedAt, reward)
	if err != nil {
		return fmt.Errorf("task put: %w", err)
	}
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)
	return scanTask(row)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("task delete: %w", err)
	}
	return nil
}

func (r *TaskRepo) ListAll(ctx context.Context) ([]Task, error) {
	return r.list(ctx, taskSelect+` ORDER BY created_at ASC, id ASC`)
}

func (r *TaskRepo) ListByStatus(ctx context.Context, status string) ([]Task, error) {
	return r.list(ctx, taskSelect+` WHERE status = ? ORDER BY created_at ASC, id ASC`, status)
}

// CountCompletedInCategorySince counts done tasks in the category completed
// at or after since. Feeds the same-category diminishing-returns penalty.
func (r *TaskRepo) CountCompletedInCategorySince(ctx context.Context, categoryID string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE category_id = ? AND completed_at IS NOT NULL AND completed_at >= ?
	`, categoryID, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task category count: %w", err)
	}
	return n, nil
}

// CountCompletedWithTitleSince counts completions of the exact title at or
// after since. Feeds the duplicate-title anti-farming penalty.
func (r *TaskRepo) CountCompletedWithTitleSince(ctx context.Context, title string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE title = ? AND completed_at IS NOT NULL AND completed_at >= ?
	`, title, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task title count: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) CountCompleted(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE status = 'done'`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task done count: %w", err)
	}
	return n, nil
}

// CompletedByCategory returns done-task counts keyed by category id.
// Tasks without a category are skipped.
func (r *TaskRepo) CompletedByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, COUNT(*)
		FROM tasks
		WHERE status = 'done' AND category_id IS NOT NULL
		GROUP BY category_id
	`)
	if err != nil {
		return nil, fmt.Errorf("task category breakdown: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("task category breakdown scan: %w", err)
		}
		out[cat] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task category breakdown rows: %w", err)
	}
	return out, nil
}

const taskSelect = `
	SELECT id, title, category_id, status, priority, deadline_at, recurrence,
		estimate_minutes, tags, notes, subtasks, created_at, updated_at, completed_at, reward
	FROM tasks`

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	var (
		t             Task
		categoryID    sql.NullString
		deadlineAt    sql.NullTime
		recurrenceRaw sql.NullString
		tagsRaw       sql.NullString
		notes         sql.NullString
		subtasksRaw   sql.NullString
		completedAt   sql.NullTime
		rewardRaw     sql.NullString
	)

	if err := row.Scan(
		&t.ID, &t.Title, &categoryID, &t.Status, &t.Priority, &deadlineAt, &recurrenceRaw,
		&t.EstimateMinutes, &tagsRaw, &notes, &subtasksRaw, &t.CreatedAt, &t.UpdatedAt, &completedAt, &rewardRaw,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}

	if categoryID.Valid {
		v := categoryID.String
		t.CategoryID = &v
	}
	if deadlineAt.Valid {
		v := deadlineAt.Time
		t.DeadlineAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	if notes.Valid {
		t.Notes = notes.String
	}
	if recurrenceRaw.Valid && recurrenceRaw.String != "" {
		var rule RecurrenceRule
		if err := json.Unmarshal([]byte(recurrenceRaw.String), &rule); err != nil {
			return nil, fmt.Errorf("unmarshal recurrence: %w", err)
		}
		t.Recurrence = &rule
	}
	if tagsRaw.Valid && tagsRaw.String != "" {
		if err := json.Unmarshal([]byte(tagsRaw.String), &t.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if subtasksRaw.Valid && subtasksRaw.String != "" {
		if err := json.Unmarshal([]byte(subtasksRaw.String), &t.Subtasks); err != nil {
			return nil, fmt.Errorf("unmarshal subtasks: %w", err)
		}
	}
	if rewardRaw.Valid && rewardRaw.String != "" {
		var reward CompletionReward
		if err := json.Unmarshal([]byte(rewardRaw.String), &reward); err != nil {
			return nil, fmt.Errorf("unmarshal reward: %w", err)
		}
		t.Reward = &reward
	}
	return &t, nil
}

func marshalNullable(v any) (*string, error) {
	switch x := v.(type) {
	case *RecurrenceRule:
		if x == nil {
			return nil, nil
		}
	case *CompletionReward:
		if x == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}
