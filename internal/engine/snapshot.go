package engine

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"focusquest/internal/storage"
)

// CategoryShare is one entry of the top-categories ranking.
type CategoryShare struct {
	CategoryID string `json:"category_id"`
	Percent    int    `json:"percent"`
}

// SocialSnapshot is the privacy-filtered, aggregate-only export. Every
// field it exposes is enumerated here; task titles, notes, and any other
// raw content never cross this boundary.
type SocialSnapshot struct {
	Level                int             `json:"level"`
	PrestigeRank         int             `json:"prestige_rank"`
	XPToday              int             `json:"xp_today"`
	FocusMinutesToday    int             `json:"focus_minutes_today"`
	CompletionsToday     int             `json:"completions_today"`
	XPWeek               int             `json:"xp_week"`
	FocusMinutesWeek     int             `json:"focus_minutes_week"`
	CompletionsWeek      int             `json:"completions_week"`
	TaskStreakDays       int             `json:"task_streak_days"`
	FocusStreakDays      int             `json:"focus_streak_days"`
	TopCategories        []CategoryShare `json:"top_categories"`
	RecentBadgeID        string          `json:"recent_badge_id,omitempty"`
	QuestProgressPercent int             `json:"quest_progress_percent"`
}

// SnapshotInput is everything the builder reads: projections, the
// character, streaks, the ledger, and active quests. No raw task rows.
type SnapshotInput struct {
	Now        time.Time
	From       time.Time
	To         time.Time
	Character  *storage.Character
	Streak     *storage.Streak
	Aggregates []storage.DailyAggregate
	Events     []storage.Event
	Quests     []storage.Quest
}

// BuildSnapshotFromData derives the shareable summary. Pure: no I/O, no
// clock beyond in.Now.
func BuildSnapshotFromData(in SnapshotInput) SocialSnapshot {
	out := SocialSnapshot{Level: 1}
	if in.Character != nil {
		out.Level = in.Character.Level
		out.PrestigeRank = in.Character.PrestigeRank
	}
	if in.Streak != nil {
		out.TaskStreakDays = in.Streak.TaskDays
		out.FocusStreakDays = in.Streak.FocusDays
	}

	today := in.Now.Format(storage.DayLayout)
	weekFrom := in.Now.AddDate(0, 0, -6).Format(storage.DayLayout)

	categoryMinutes := map[string]int{}
	for _, agg := range in.Aggregates {
		if agg.Date == today {
			out.XPToday = agg.XPGained
			out.FocusMinutesToday = agg.FocusMinutes
			out.CompletionsToday = agg.Completions
		}
		if agg.Date < weekFrom || agg.Date > today {
			continue
		}
		out.XPWeek += agg.XPGained
		out.FocusMinutesWeek += agg.FocusMinutes
		out.CompletionsWeek += agg.Completions
		for cat, mins := range agg.CategoryMinutes {
			categoryMinutes[cat] += mins
		}
	}

	out.TopCategories = topCategoryShares(categoryMinutes, 3)
	out.RecentBadgeID = recentBadgeID(in.Events, in.From, in.To)
	out.QuestProgressPercent = questProgressPercent(in.Quests)
	return out
}

// topCategoryShares ranks categories by focus minutes and expresses the
// top n as integer percentages of the window total. Shares are floored so
// the exported percentages can never sum above 100.
func topCategoryShares(categoryMinutes map[string]int, n int) []CategoryShare {
	total := 0
	ids := make([]string, 0, len(categoryMinutes))
	for id, mins := range categoryMinutes {
		total += mins
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if categoryMinutes[ids[i]] != categoryMinutes[ids[j]] {
			return categoryMinutes[ids[i]] > categoryMinutes[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}

	out := make([]CategoryShare, 0, len(ids))
	for _, id := range ids {
		percent := 0
		if total > 0 {
			percent = 100 * categoryMinutes[id] / total
		}
		out = append(out, CategoryShare{CategoryID: id, Percent: percent})
	}
	return out
}

// recentBadgeID extracts only the achievement id from the most recent
// BadgeUnlocked event within the range. Every other payload field is
// discarded here; this is the privacy boundary.
func recentBadgeID(events []storage.Event, from, to time.Time) string {
	fromStr := from.UTC().Format(time.RFC3339)
	toStr := to.UTC().Format(time.RFC3339)

	var candidates []storage.Event
	for _, e := range events {
		if e.Type != EventBadgeUnlocked {
			continue
		}
		if e.OccurredAt < fromStr || e.OccurredAt > toStr {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].OccurredAt > candidates[j].OccurredAt
	})

	var payload struct {
		AchievementID string `json:"achievement_id"`
	}
	if err := json.Unmarshal(candidates[0].Payload, &payload); err != nil {
		return ""
	}
	return payload.AchievementID
}

// questProgressPercent is the mean completion ratio across the supplied
// quests, as a rounded percentage.
func questProgressPercent(quests []storage.Quest) int {
	if len(quests) == 0 {
		return 0
	}
	sum := 0.0
	for _, q := range quests {
		target := q.Target
		if target < 1 {
			target = 1
		}
		ratio := float64(q.Progress) / float64(target)
		if ratio > 1 {
			ratio = 1
		}
		sum += ratio
	}
	return int(math.Round(100 * sum / float64(len(quests))))
}

// Snapshot loads the builder's inputs from storage and runs it. The range
// bounds which badge unlocks are eligible for the summary.
func (s *Service) Snapshot(ctx context.Context, from, to time.Time) (SocialSnapshot, error) {
	c, err := s.characters.GetFirst(ctx)
	if err != nil {
		return SocialSnapshot{}, err
	}
	streak, err := s.streaks.GetFirst(ctx)
	if err != nil {
		return SocialSnapshot{}, err
	}
	aggregates, err := s.aggregates.ListAll(ctx)
	if err != nil {
		return SocialSnapshot{}, err
	}
	events, err := s.events.ListByType(ctx, EventBadgeUnlocked)
	if err != nil {
		return SocialSnapshot{}, err
	}
	quests, err := s.quests.ListByStatus(ctx, QuestActive)
	if err != nil {
		return SocialSnapshot{}, err
	}

	return BuildSnapshotFromData(SnapshotInput{
		Now:        s.now(),
		From:       from,
		To:         to,
		Character:  c,
		Streak:     streak,
		Aggregates: aggregates,
		Events:     events,
		Quests:     quests,
	}), nil
}
