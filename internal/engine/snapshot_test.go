package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"focusquest/internal/storage"
)

func snapshotFixtureNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestBuildSnapshotWindows(t *testing.T) {
	now := snapshotFixtureNow()
	snap := BuildSnapshotFromData(SnapshotInput{
		Now:  now,
		From: now.AddDate(0, 0, -6),
		To:   now,
		Character: &storage.Character{
			Level:        7,
			PrestigeRank: 1,
		},
		Streak: &storage.Streak{TaskDays: 4, FocusDays: 2},
		Aggregates: []storage.DailyAggregate{
			{Date: "2026-03-01", XPGained: 500, FocusMinutes: 500, Completions: 50}, // outside the week
			{Date: "2026-03-05", XPGained: 40, FocusMinutes: 30, Completions: 2,
				CategoryMinutes: map[string]int{"work": 30}},
			{Date: "2026-03-10", XPGained: 60, FocusMinutes: 50, Completions: 3,
				CategoryMinutes: map[string]int{"work": 20, "health": 30}},
		},
	})

	if snap.Level != 7 || snap.PrestigeRank != 1 {
		t.Fatalf("level/rank = %d/%d", snap.Level, snap.PrestigeRank)
	}
	if snap.XPToday != 60 || snap.FocusMinutesToday != 50 || snap.CompletionsToday != 3 {
		t.Fatalf("today = %d xp / %d min / %d done", snap.XPToday, snap.FocusMinutesToday, snap.CompletionsToday)
	}
	if snap.XPWeek != 100 || snap.FocusMinutesWeek != 80 || snap.CompletionsWeek != 5 {
		t.Fatalf("week = %d xp / %d min / %d done", snap.XPWeek, snap.FocusMinutesWeek, snap.CompletionsWeek)
	}
	if snap.TaskStreakDays != 4 || snap.FocusStreakDays != 2 {
		t.Fatalf("streaks = %d/%d", snap.TaskStreakDays, snap.FocusStreakDays)
	}
}

func TestSnapshotTopCategories(t *testing.T) {
	now := snapshotFixtureNow()
	snap := BuildSnapshotFromData(SnapshotInput{
		Now:  now,
		From: now.AddDate(0, 0, -6),
		To:   now,
		Aggregates: []storage.DailyAggregate{
			{Date: "2026-03-09", CategoryMinutes: map[string]int{
				"work": 60, "health": 25, "learning": 10, "creative": 5,
			}},
		},
	})

	if len(snap.TopCategories) != 3 {
		t.Fatalf("top categories = %d, want 3", len(snap.TopCategories))
	}
	if snap.TopCategories[0].CategoryID != "work" || snap.TopCategories[0].Percent != 60 {
		t.Fatalf("top share = %+v, want work 60%%", snap.TopCategories[0])
	}
	for _, share := range snap.TopCategories {
		if share.Percent < 0 || share.Percent > 100 {
			t.Fatalf("share %+v outside [0,100]", share)
		}
	}
}

func TestSnapshotTopCategorySharesNeverSumAbove100(t *testing.T) {
	now := snapshotFixtureNow()
	// A near-even three-way split rounds every share up; flooring must keep
	// the total at or below 100.
	snap := BuildSnapshotFromData(SnapshotInput{
		Now:  now,
		From: now.AddDate(0, 0, -6),
		To:   now,
		Aggregates: []storage.DailyAggregate{
			{Date: "2026-03-09", CategoryMinutes: map[string]int{
				"work": 67, "health": 67, "learning": 66,
			}},
		},
	})

	sum := 0
	for _, share := range snap.TopCategories {
		sum += share.Percent
	}
	if sum > 100 {
		t.Fatalf("top-category percentages sum to %d (> 100): %+v", sum, snap.TopCategories)
	}
	for _, share := range snap.TopCategories {
		if share.Percent != 33 {
			t.Fatalf("share %+v, want floored 33", share)
		}
	}
}

func TestSnapshotRecentBadge(t *testing.T) {
	now := snapshotFixtureNow()

	older, err := NewEvent(storage.MainUserID, now.Add(-48*time.Hour), BadgeUnlockedPayload{AchievementID: "first_quest", Tier: "bronze"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	newer, err := NewEvent(storage.MainUserID, now.Add(-2*time.Hour), BadgeUnlockedPayload{AchievementID: "warming_up", Tier: "bronze"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	outside, err := NewEvent(storage.MainUserID, now.Add(-30*24*time.Hour), BadgeUnlockedPayload{AchievementID: "monk_mode", Tier: "gold"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	snap := BuildSnapshotFromData(SnapshotInput{
		Now:    now,
		From:   now.AddDate(0, 0, -6),
		To:     now,
		Events: []storage.Event{older, newer, outside},
	})
	if snap.RecentBadgeID != "warming_up" {
		t.Fatalf("recent badge = %q, want warming_up", snap.RecentBadgeID)
	}
}

func TestSnapshotQuestProgressPercent(t *testing.T) {
	now := snapshotFixtureNow()
	snap := BuildSnapshotFromData(SnapshotInput{
		Now:  now,
		From: now.AddDate(0, 0, -6),
		To:   now,
		Quests: []storage.Quest{
			{Target: 10, Progress: 5},
			{Target: 4, Progress: 4},
			{Target: 2, Progress: 10}, // over-progress clamps to 100%
		},
	})
	if snap.QuestProgressPercent != 83 {
		t.Fatalf("quest progress = %d%%, want 83", snap.QuestProgressPercent)
	}
}

func TestSnapshotNeverLeaksRawContent(t *testing.T) {
	const rawTaskTitle = "should-not-be-exported"
	now := snapshotFixtureNow()

	ev, err := NewEvent(storage.MainUserID, now.Add(-time.Hour), TaskCompletedPayload{
		TaskID:     rawTaskTitle,
		CategoryID: "work",
		Priority:   string(PriorityHigh),
		XPGain:     40,
	})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	badge, err := NewEvent(storage.MainUserID, now.Add(-time.Hour), BadgeUnlockedPayload{AchievementID: "first_quest", Tier: "bronze"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	snap := BuildSnapshotFromData(SnapshotInput{
		Now:    now,
		From:   now.AddDate(0, 0, -6),
		To:     now,
		Events: []storage.Event{ev, badge},
	})

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), rawTaskTitle) {
		t.Fatalf("snapshot leaked raw content: %s", raw)
	}
}

func TestSnapshotEmptyInput(t *testing.T) {
	now := snapshotFixtureNow()
	snap := BuildSnapshotFromData(SnapshotInput{Now: now, From: now.AddDate(0, 0, -6), To: now})
	if snap.Level != 1 {
		t.Fatalf("level = %d, want default 1", snap.Level)
	}
	if snap.QuestProgressPercent != 0 || snap.RecentBadgeID != "" {
		t.Fatalf("empty input produced %+v", snap)
	}
}
