package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type QuestRepo struct {
	db *sql.DB
}

func NewQuestRepo(db *sql.DB) *QuestRepo {
	return &QuestRepo{db: db}
}

func (r *QuestRepo) Put(ctx context.Context, q *Quest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quests (id, kind, title, objective, category_id, target, progress, reward, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind, title = excluded.title, objective = excluded.objective,
			category_id = excluded.category_id, target = excluded.target,
			progress = excluded.progress, reward = excluded.reward, status = excluded.status
	`, q.ID, q.Kind, q.Title, q.Objective, q.CategoryID, q.Target, q.Progress, q.Reward, q.Status, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("quest put: %w", err)
	}
	return nil
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]Quest, error) {
	return r.list(ctx, questSelect+` ORDER BY created_at ASC, id ASC`)
}

func (r *QuestRepo) ListByStatus(ctx context.Context, status string) ([]Quest, error) {
	return r.list(ctx, questSelect+` WHERE status = ? ORDER BY created_at ASC, id ASC`, status)
}

// DeleteByKind clears a generated set before regeneration.
func (r *QuestRepo) DeleteByKind(ctx context.Context, kind string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("quest delete by kind: %w", err)
	}
	return nil
}

const questSelect = `
	SELECT id, kind, title, objective, category_id, target, progress, reward, status, created_at
	FROM quests`

func (r *QuestRepo) list(ctx context.Context, query string, args ...any) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		var (
			q          Quest
			categoryID sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Kind, &q.Title, &q.Objective, &categoryID, &q.Target, &q.Progress, &q.Reward, &q.Status, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("quest scan: %w", err)
		}
		if categoryID.Valid {
			v := categoryID.String
			q.CategoryID = &v
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest rows: %w", err)
	}
	return out, nil
}
