package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type AchievementRepo struct {
	db *sql.DB
}

func NewAchievementRepo(db *sql.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

func (r *AchievementRepo) Upsert(ctx context.Context, a Achievement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO achievements (id, name, category, tier, requirement_type, requirement_value)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, category = excluded.category, tier = excluded.tier,
			requirement_type = excluded.requirement_type, requirement_value = excluded.requirement_value
	`, a.ID, a.Name, a.Category, a.Tier, a.RequirementType, a.RequirementValue)
	if err != nil {
		return fmt.Errorf("achievement upsert: %w", err)
	}
	return nil
}

func (r *AchievementRepo) ListAll(ctx context.Context) ([]Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, tier, requirement_type, requirement_value
		FROM achievements
		ORDER BY requirement_type ASC, requirement_value ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.Tier, &a.RequirementType, &a.RequirementValue); err != nil {
			return nil, fmt.Errorf("achievement scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}

func (r *AchievementRepo) GetProgress(ctx context.Context, achievementID string) (*AchievementProgress, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT achievement_id, value, unlocked_at
		FROM achievement_progress
		WHERE achievement_id = ?
	`, achievementID)

	var (
		p        AchievementProgress
		unlocked sql.NullString
	)
	if err := row.Scan(&p.AchievementID, &p.Value, &unlocked); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("achievement progress get: %w", err)
	}
	if unlocked.Valid {
		v := unlocked.String
		p.UnlockedAt = &v
	}
	return &p, nil
}

func (r *AchievementRepo) PutProgress(ctx context.Context, p AchievementProgress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO achievement_progress (achievement_id, value, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(achievement_id) DO UPDATE SET value = excluded.value, unlocked_at = excluded.unlocked_at
	`, p.AchievementID, p.Value, p.UnlockedAt)
	if err != nil {
		return fmt.Errorf("achievement progress put: %w", err)
	}
	return nil
}

func (r *AchievementRepo) ListProgress(ctx context.Context) ([]AchievementProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT achievement_id, value, unlocked_at
		FROM achievement_progress
		ORDER BY achievement_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("achievement progress list: %w", err)
	}
	defer rows.Close()

	var out []AchievementProgress
	for rows.Next() {
		var (
			p        AchievementProgress
			unlocked sql.NullString
		)
		if err := rows.Scan(&p.AchievementID, &p.Value, &unlocked); err != nil {
			return nil, fmt.Errorf("achievement progress scan: %w", err)
		}
		if unlocked.Valid {
			v := unlocked.String
			p.UnlockedAt = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement progress rows: %w", err)
	}
	return out, nil
}
