package storage

import "time"

// MainUserID keys the singleton rows (character, streak). There is exactly
// one local user.
const MainUserID = "main_user"

// DayLayout is the calendar-date format used for streaks and daily aggregates.
const DayLayout = "2006-01-02"

type Character struct {
	ID           string
	Level        int
	XPCurrent    int
	XPLifetime   int
	SeasonCap    int
	PrestigeRank int
	LegacyPoints int
	Stats        map[string]int
}

type Streak struct {
	ID           string
	TaskDays     int
	FocusDays    int
	LastTaskDay  *string
	LastFocusDay *string
}

type Category struct {
	ID           string
	Name         string
	XPMultiplier float64
	StatWeights  map[string]float64
}

// RecurrenceRule describes how a completed task respawns.
// Kind is "daily_interval" (IntervalDays) or "weekly_days"
// (IntervalWeeks + Weekdays, 0=Sunday..6=Saturday).
type RecurrenceRule struct {
	Kind          string `json:"kind"`
	IntervalDays  int    `json:"interval_days,omitempty"`
	IntervalWeeks int    `json:"interval_weeks,omitempty"`
	Weekdays      []int  `json:"weekdays,omitempty"`
	Label         string `json:"label,omitempty"`
}

type Subtask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// CompletionReward is captured at completion time so a reopen can reverse
// exactly what was granted, not a recomputation.
type CompletionReward struct {
	XPGain      int            `json:"xp_gain"`
	StatGains   map[string]int `json:"stat_gains"`
	LevelBefore int            `json:"level_before"`
	LevelAfter  int            `json:"level_after"`
}

type Task struct {
	ID              string
	Title           string
	CategoryID      *string
	Status          string
	Priority        string
	DeadlineAt      *time.Time
	Recurrence      *RecurrenceRule
	EstimateMinutes int
	Tags            []string
	Notes           string
	Subtasks        []Subtask
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	Reward          *CompletionReward
}

type FocusSession struct {
	ID          string
	Label       *string
	TaskID      *string
	CategoryID  *string
	StartedAt   time.Time
	EndedAt     *time.Time
	DurationMin int
	Type        string
	Completed   bool
}

type Quest struct {
	ID         string
	Kind       string
	Title      string
	Objective  string
	CategoryID *string
	Target     int
	Progress   int
	Reward     int
	Status     string
	CreatedAt  time.Time
}

type Achievement struct {
	ID               string
	Name             string
	Category         string
	Tier             string
	RequirementType  string
	RequirementValue int
}

type AchievementProgress struct {
	AchievementID string
	Value         int
	UnlockedAt    *string
}

// DailyAggregate is the additive per-date projection. Every mutation is a
// signed delta merge; fields can dip negative transiently on reversal.
type DailyAggregate struct {
	Date            string
	FocusMinutes    int
	Completions     int
	XPGained        int
	CategoryMinutes map[string]int
}

// Event is the append-only ledger row. Payload is opaque JSON tagged by Type.
type Event struct {
	ID            string
	SchemaVersion int
	Type          string
	OccurredAt    string
	UserID        string
	Payload       []byte
}
