package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS character (
			id TEXT PRIMARY KEY,
			level INTEGER DEFAULT 1,
			xp_current INTEGER DEFAULT 0,
			xp_lifetime INTEGER DEFAULT 0,
			season_cap INTEGER DEFAULT 50,
			prestige_rank INTEGER DEFAULT 0,
			legacy_points INTEGER DEFAULT 0,
			stats TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS streaks (
			id TEXT PRIMARY KEY,
			task_days INTEGER DEFAULT 0,
			focus_days INTEGER DEFAULT 0,
			last_task_day TEXT,
			last_focus_day TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			xp_multiplier REAL DEFAULT 1,
			stat_weights TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category_id TEXT,
			status TEXT DEFAULT 'todo',
			priority TEXT DEFAULT 'medium',
			deadline_at DATETIME,
			recurrence TEXT,
			estimate_minutes INTEGER DEFAULT 25,
			tags TEXT,
			notes TEXT,
			subtasks TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			completed_at DATETIME,
			reward TEXT,
			FOREIGN KEY(category_id) REFERENCES categories(id)
		);`,
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id TEXT PRIMARY KEY,
			label TEXT,
			task_id TEXT,
			category_id TEXT,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			duration_min INTEGER NOT NULL,
			type TEXT DEFAULT 'work',
			completed INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS quests (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			objective TEXT NOT NULL,
			category_id TEXT,
			target INTEGER NOT NULL,
			progress INTEGER DEFAULT 0,
			reward INTEGER DEFAULT 0,
			status TEXT DEFAULT 'active',
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			tier TEXT,
			requirement_type TEXT NOT NULL,
			requirement_value INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievement_progress (
			achievement_id TEXT PRIMARY KEY,
			value INTEGER DEFAULT 0,
			unlocked_at TEXT,
			FOREIGN KEY(achievement_id) REFERENCES achievements(id)
		);`,
		`CREATE TABLE IF NOT EXISTS daily_aggregates (
			date TEXT PRIMARY KEY,
			focus_minutes INTEGER DEFAULT 0,
			completions INTEGER DEFAULT 0,
			xp_gained INTEGER DEFAULT 0,
			category_minutes TEXT
		);`,
		// Append-only ledger; rows are never updated or deleted.
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			type TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			user_id TEXT NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_category_id ON tasks(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_type_completed ON focus_sessions(type, completed);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_status ON quests(status);`,
		`CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
