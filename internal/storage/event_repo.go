package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// EventRepo is the only write path into the ledger. Rows are never updated
// or deleted.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, schema_version, type, occurred_at, user_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.SchemaVersion, e.Type, e.OccurredAt, e.UserID, string(e.Payload))
	if err != nil {
		return fmt.Errorf("event append: %w", err)
	}
	return nil
}

// Range returns events with from <= occurred_at <= to, ordered by
// occurred_at then id so replays are stable.
func (r *EventRepo) Range(ctx context.Context, from, to string) ([]Event, error) {
	return r.list(ctx, eventSelect+` WHERE occurred_at >= ? AND occurred_at <= ? ORDER BY occurred_at ASC, id ASC`, from, to)
}

func (r *EventRepo) ListByType(ctx context.Context, eventType string) ([]Event, error) {
	return r.list(ctx, eventSelect+` WHERE type = ? ORDER BY occurred_at ASC, id ASC`, eventType)
}

func (r *EventRepo) ListAll(ctx context.Context) ([]Event, error) {
	return r.list(ctx, eventSelect+` ORDER BY occurred_at ASC, id ASC`)
}

const eventSelect = `
	SELECT id, schema_version, type, occurred_at, user_id, payload
	FROM events`

func (r *EventRepo) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("event list: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e       Event
			payload string
		)
		if err := rows.Scan(&e.ID, &e.SchemaVersion, &e.Type, &e.OccurredAt, &e.UserID, &payload); err != nil {
			return nil, fmt.Errorf("event scan: %w", err)
		}
		e.Payload = []byte(payload)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event rows: %w", err)
	}
	return out, nil
}
