package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, xp_multiplier, stat_weights FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	weights, err := json.Marshal(c.StatWeights)
	if err != nil {
		return fmt.Errorf("marshal stat weights: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, xp_multiplier, stat_weights) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, xp_multiplier = excluded.xp_multiplier, stat_weights = excluded.stat_weights
	`, c.ID, c.Name, c.XPMultiplier, string(weights))
	if err != nil {
		return fmt.Errorf("category upsert: %w", err)
	}
	return nil
}

func (r *CategoryRepo) ListAll(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, xp_multiplier, stat_weights FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("category list: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category rows: %w", err)
	}
	return out, nil
}

func scanCategory(row scanner) (*Category, error) {
	var (
		c          Category
		weightsRaw sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.XPMultiplier, &weightsRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("category scan: %w", err)
	}
	if weightsRaw.Valid && weightsRaw.String != "" {
		if err := json.Unmarshal([]byte(weightsRaw.String), &c.StatWeights); err != nil {
			return nil, fmt.Errorf("unmarshal stat weights: %w", err)
		}
	}
	return &c, nil
}
