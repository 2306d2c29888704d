package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"focusquest/internal/storage"
)

// Recurrence rule kinds.
const (
	RecurrenceDailyInterval = "daily_interval"
	RecurrenceWeeklyDays    = "weekly_days"
)

// weeklyScanMaxCycles bounds the weekly scan so a misconfigured rule (e.g.
// an empty weekday set) cannot loop forever.
const weeklyScanMaxCycles = 80

// ErrNoValidOccurrence is returned when the bounded weekly scan exhausts
// without finding a future occurrence.
var ErrNoValidOccurrence = errors.New("recurrence rule has no valid occurrence")

// NextOccurrence computes the deadline of the next spawn of a recurring
// task completed at completedAt. The base date is the existing deadline,
// or the completion date when the task had none.
func NextOccurrence(rule *storage.RecurrenceRule, deadline *time.Time, completedAt time.Time) (time.Time, error) {
	if rule == nil {
		return time.Time{}, errors.New("recurrence rule is required")
	}

	base := completedAt
	if deadline != nil {
		base = *deadline
	}

	switch rule.Kind {
	case RecurrenceDailyInterval:
		interval := rule.IntervalDays
		if interval < 1 {
			interval = 1
		}
		next := base.AddDate(0, 0, interval)
		// Keep the calendar date from the rule, the time of day from the
		// completion.
		return time.Date(next.Year(), next.Month(), next.Day(),
			completedAt.Hour(), completedAt.Minute(), completedAt.Second(), 0, completedAt.Location()), nil

	case RecurrenceWeeklyDays:
		return nextWeeklyOccurrence(rule, base, completedAt)

	default:
		return time.Time{}, fmt.Errorf("unknown recurrence kind: %q", rule.Kind)
	}
}

func nextWeeklyOccurrence(rule *storage.RecurrenceRule, base, completedAt time.Time) (time.Time, error) {
	weeks := rule.IntervalWeeks
	if weeks < 1 {
		weeks = 1
	}

	weekdays := make([]int, 0, len(rule.Weekdays))
	seen := map[int]bool{}
	for _, wd := range rule.Weekdays {
		if wd < 0 || wd > 6 || seen[wd] {
			continue
		}
		seen[wd] = true
		weekdays = append(weekdays, wd)
	}
	sort.Ints(weekdays)

	// Anchor to the Sunday of the base date's week.
	anchor := time.Date(base.Year(), base.Month(), base.Day(),
		base.Hour(), base.Minute(), base.Second(), 0, base.Location())
	anchor = anchor.AddDate(0, 0, -int(anchor.Weekday()))

	for cycle := 0; cycle < weeklyScanMaxCycles; cycle++ {
		weekStart := anchor.AddDate(0, 0, cycle*weeks*7)
		for _, wd := range weekdays {
			candidate := weekStart.AddDate(0, 0, wd)
			if candidate.After(completedAt) {
				return candidate, nil
			}
		}
	}
	return time.Time{}, ErrNoValidOccurrence
}

// RuleLabel renders a recurrence rule for display.
func RuleLabel(rule *storage.RecurrenceRule) string {
	if rule == nil {
		return ""
	}
	switch rule.Kind {
	case RecurrenceDailyInterval:
		if rule.IntervalDays <= 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", rule.IntervalDays)
	case RecurrenceWeeklyDays:
		names := make([]string, 0, len(rule.Weekdays))
		for _, wd := range rule.Weekdays {
			if wd >= 0 && wd <= 6 {
				names = append(names, time.Weekday(wd).String()[:3])
			}
		}
		prefix := "weekly"
		if rule.IntervalWeeks > 1 {
			prefix = fmt.Sprintf("every %d weeks", rule.IntervalWeeks)
		}
		if len(names) == 0 {
			return prefix
		}
		return prefix + " on " + strings.Join(names, ", ")
	default:
		return rule.Kind
	}
}

// SpawnNext clones a completed recurring task into a fresh todo with the
// computed next deadline and reset subtasks.
func SpawnNext(t *storage.Task, completedAt time.Time) (*storage.Task, error) {
	nextDeadline, err := NextOccurrence(t.Recurrence, t.DeadlineAt, completedAt)
	if err != nil {
		return nil, err
	}

	rule := *t.Recurrence
	rule.Label = RuleLabel(t.Recurrence)

	subtasks := make([]storage.Subtask, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		subtasks = append(subtasks, storage.Subtask{ID: uuid.NewString(), Title: st.Title, Done: false})
	}

	next := &storage.Task{
		ID:              uuid.NewString(),
		Title:           t.Title,
		CategoryID:      t.CategoryID,
		Status:          TaskStatusTodo,
		Priority:        t.Priority,
		DeadlineAt:      &nextDeadline,
		Recurrence:      &rule,
		EstimateMinutes: t.EstimateMinutes,
		Tags:            append([]string(nil), t.Tags...),
		Notes:           t.Notes,
		Subtasks:        subtasks,
		CreatedAt:       completedAt,
		UpdatedAt:       completedAt,
	}
	return next, nil
}
