package engine

import (
	"testing"

	"focusquest/internal/storage"
)

func TestUpdateDayStreak(t *testing.T) {
	if got := UpdateDayStreak(0, nil, "2026-02-10"); got != 1 {
		t.Fatalf("first activity = %d, want 1", got)
	}
	day := "2026-02-10"
	if got := UpdateDayStreak(1, &day, "2026-02-11"); got != 2 {
		t.Fatalf("next-day activity = %d, want 2", got)
	}
	day = "2026-02-11"
	if got := UpdateDayStreak(2, &day, "2026-02-13"); got != 1 {
		t.Fatalf("after a gap = %d, want reset to 1", got)
	}
	day = "2026-02-12"
	if got := UpdateDayStreak(2, &day, "2026-02-12"); got != 2 {
		t.Fatalf("same-day repeat = %d, want unchanged 2", got)
	}
	day = "2026-02-12"
	if got := UpdateDayStreak(5, &day, "2026-02-01"); got != 1 {
		t.Fatalf("backward date = %d, want reset to 1", got)
	}
	day = "garbage"
	if got := UpdateDayStreak(5, &day, "2026-02-12"); got != 1 {
		t.Fatalf("unparseable last day = %d, want reset to 1", got)
	}
}

func TestTaskAndFocusStreaksIndependent(t *testing.T) {
	s := &storage.Streak{}

	UpdateTaskStreak(s, "2026-02-10")
	UpdateTaskStreak(s, "2026-02-11")
	if s.TaskDays != 2 {
		t.Fatalf("task streak = %d, want 2", s.TaskDays)
	}
	if s.FocusDays != 0 {
		t.Fatalf("focus streak moved to %d on task completion", s.FocusDays)
	}

	UpdateFocusStreak(s, "2026-02-11")
	if s.FocusDays != 1 {
		t.Fatalf("focus streak = %d, want 1", s.FocusDays)
	}
	if s.TaskDays != 2 {
		t.Fatalf("task streak moved to %d on focus session", s.TaskDays)
	}

	if s.LastTaskDay == nil || *s.LastTaskDay != "2026-02-11" {
		t.Fatalf("last task day = %v, want 2026-02-11", s.LastTaskDay)
	}
	if s.LastFocusDay == nil || *s.LastFocusDay != "2026-02-11" {
		t.Fatalf("last focus day = %v, want 2026-02-11", s.LastFocusDay)
	}
}

func TestUpdateTaskStreakAlwaysRecordsDay(t *testing.T) {
	day := "2026-02-12"
	s := &storage.Streak{TaskDays: 2, LastTaskDay: &day}
	UpdateTaskStreak(s, "2026-02-12")
	if s.TaskDays != 2 {
		t.Fatalf("same-day completion changed streak to %d", s.TaskDays)
	}
	if s.LastTaskDay == nil || *s.LastTaskDay != "2026-02-12" {
		t.Fatalf("last task day = %v, want 2026-02-12", s.LastTaskDay)
	}
}
