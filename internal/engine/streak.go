package engine

import (
	"time"

	"focusquest/internal/storage"
)

// UpdateDayStreak advances a consecutive-day counter. First activity starts
// at 1, next-day activity increments, same-day activity leaves the count
// unchanged, and any gap (or backward date) resets to 1.
func UpdateDayStreak(current int, lastDay *string, today string) int {
	if lastDay == nil || *lastDay == "" {
		return 1
	}
	switch dayDiff(*lastDay, today) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// UpdateTaskStreak applies a task-completion day to the streak state.
// lastTaskDay is always set, even on a same-day repeat.
func UpdateTaskStreak(s *storage.Streak, today string) {
	s.TaskDays = UpdateDayStreak(s.TaskDays, s.LastTaskDay, today)
	d := today
	s.LastTaskDay = &d
}

// UpdateFocusStreak applies a completed-work-session day to the streak
// state, independent of the task counter.
func UpdateFocusStreak(s *storage.Streak, today string) {
	s.FocusDays = UpdateDayStreak(s.FocusDays, s.LastFocusDay, today)
	d := today
	s.LastFocusDay = &d
}

// dayDiff returns the calendar-day difference between two yyyy-MM-dd
// strings. Unparseable input counts as a gap (reset).
func dayDiff(from, to string) int {
	a, err := time.Parse(storage.DayLayout, from)
	if err != nil {
		return -1
	}
	b, err := time.Parse(storage.DayLayout, to)
	if err != nil {
		return -1
	}
	return int(b.Sub(a).Hours() / 24)
}
