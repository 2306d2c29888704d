package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type AggregateRepo struct {
	db *sql.DB
}

func NewAggregateRepo(db *sql.DB) *AggregateRepo {
	return &AggregateRepo{db: db}
}

// AggregateDelta is a signed merge into one date's row. Zero fields are
// no-ops; negative values reverse earlier contributions.
type AggregateDelta struct {
	FocusMinutes    int
	Completions     int
	XPGained        int
	CategoryID      string
	CategoryMinutes int
}

// Apply merges delta into the aggregate row for date, creating the row if
// absent. The read-modify-write runs inside one transaction so sequential
// callers for the same date never lose a delta.
func (r *AggregateRepo) Apply(ctx context.Context, date string, delta AggregateDelta) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT date, focus_minutes, completions, xp_gained, category_minutes
			FROM daily_aggregates
			WHERE date = ?
		`, date)

		agg, err := scanAggregate(row)
		if err != nil {
			return err
		}
		if agg == nil {
			agg = &DailyAggregate{Date: date}
		}

		agg.FocusMinutes += delta.FocusMinutes
		agg.Completions += delta.Completions
		agg.XPGained += delta.XPGained
		if delta.CategoryID != "" && delta.CategoryMinutes > 0 {
			if agg.CategoryMinutes == nil {
				agg.CategoryMinutes = map[string]int{}
			}
			agg.CategoryMinutes[delta.CategoryID] += delta.CategoryMinutes
		}

		catMinutes, err := json.Marshal(agg.CategoryMinutes)
		if err != nil {
			return fmt.Errorf("marshal category minutes: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO daily_aggregates (date, focus_minutes, completions, xp_gained, category_minutes)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				focus_minutes = excluded.focus_minutes, completions = excluded.completions,
				xp_gained = excluded.xp_gained, category_minutes = excluded.category_minutes
		`, agg.Date, agg.FocusMinutes, agg.Completions, agg.XPGained, string(catMinutes))
		if err != nil {
			return fmt.Errorf("aggregate put: %w", err)
		}
		return nil
	})
}

func (r *AggregateRepo) Get(ctx context.Context, date string) (*DailyAggregate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, focus_minutes, completions, xp_gained, category_minutes
		FROM daily_aggregates
		WHERE date = ?
	`, date)
	return scanAggregate(row)
}

// Range returns rows with from <= date <= to. Dates are yyyy-MM-dd strings,
// so lexicographic comparison matches chronological order.
func (r *AggregateRepo) Range(ctx context.Context, from, to string) ([]DailyAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, focus_minutes, completions, xp_gained, category_minutes
		FROM daily_aggregates
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate range: %w", err)
	}
	defer rows.Close()

	var out []DailyAggregate
	for rows.Next() {
		agg, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate rows: %w", err)
	}
	return out, nil
}

func (r *AggregateRepo) ListAll(ctx context.Context) ([]DailyAggregate, error) {
	return r.Range(ctx, "0000-00-00", "9999-99-99")
}

func scanAggregate(row scanner) (*DailyAggregate, error) {
	var (
		agg           DailyAggregate
		catMinutesRaw sql.NullString
	)
	if err := row.Scan(&agg.Date, &agg.FocusMinutes, &agg.Completions, &agg.XPGained, &catMinutesRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("aggregate scan: %w", err)
	}
	if catMinutesRaw.Valid && catMinutesRaw.String != "" {
		if err := json.Unmarshal([]byte(catMinutesRaw.String), &agg.CategoryMinutes); err != nil {
			return nil, fmt.Errorf("unmarshal category minutes: %w", err)
		}
	}
	return &agg, nil
}
