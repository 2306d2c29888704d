package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const DefaultSeasonCap = 50

type CharacterRepo struct {
	db *sql.DB
}

func NewCharacterRepo(db *sql.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// GetFirst returns the singleton character row, or nil when the app has not
// been bootstrapped yet.
func (r *CharacterRepo) GetFirst(ctx context.Context) (*Character, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, level, xp_current, xp_lifetime, season_cap, prestige_rank, legacy_points, stats
		FROM character
		LIMIT 1
	`)

	var (
		c        Character
		statsRaw string
	)
	if err := row.Scan(&c.ID, &c.Level, &c.XPCurrent, &c.XPLifetime, &c.SeasonCap, &c.PrestigeRank, &c.LegacyPoints, &statsRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("character get: %w", err)
	}
	if err := json.Unmarshal([]byte(statsRaw), &c.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	return &c, nil
}

// GetOrCreate returns the singleton character, creating it with the
// first-launch defaults (level 1, every stat at 5) when absent.
func (r *CharacterRepo) GetOrCreate(ctx context.Context, defaultStats map[string]int) (*Character, error) {
	c, err := r.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	stats, err := json.Marshal(defaultStats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO character (id, level, xp_current, xp_lifetime, season_cap, prestige_rank, legacy_points, stats)
		VALUES (?, 1, 0, 0, ?, 0, 0, ?)
	`, MainUserID, DefaultSeasonCap, string(stats))
	if err != nil {
		return nil, fmt.Errorf("character insert: %w", err)
	}
	return r.GetFirst(ctx)
}

func (r *CharacterRepo) Update(ctx context.Context, c *Character) error {
	stats, err := json.Marshal(c.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE character
		SET level = ?, xp_current = ?, xp_lifetime = ?, season_cap = ?, prestige_rank = ?, legacy_points = ?, stats = ?
		WHERE id = ?
	`, c.Level, c.XPCurrent, c.XPLifetime, c.SeasonCap, c.PrestigeRank, c.LegacyPoints, string(stats), c.ID)
	if err != nil {
		return fmt.Errorf("character update: %w", err)
	}
	return nil
}
