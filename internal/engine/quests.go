package engine

import (
	"fmt"
	"math"
)

// QuestDef is a generated quest before it becomes a stored row.
type QuestDef struct {
	Kind       string
	Title      string
	Objective  string
	CategoryID *string
	Target     int
	Reward     int
}

// DailySignals summarizes recent activity for adaptive daily quests.
// NeglectedStats is caller-ranked, most neglected first.
type DailySignals struct {
	AvgDailyFocusMinutes float64
	NeglectedStats       []StatKey
}

// GenerateDailyQuests produces the fixed-shape set of three daily quests:
// an adaptive focus target, three task completions, and a balance quest
// aimed at the most neglected stat.
func GenerateDailyQuests(sig DailySignals) []QuestDef {
	focusTarget := int(math.Round(0.8 * sig.AvgDailyFocusMinutes))
	if focusTarget < 25 {
		focusTarget = 25
	}

	balanceStat := DefaultStat
	if len(sig.NeglectedStats) > 0 && sig.NeglectedStats[0].IsValid() {
		balanceStat = sig.NeglectedStats[0]
	}

	return []QuestDef{
		{
			Kind:      QuestDaily,
			Title:     fmt.Sprintf("Focus for %d minutes", focusTarget),
			Objective: ObjectiveFocusMinutes,
			Target:    focusTarget,
			Reward:    30,
		},
		{
			Kind:      QuestDaily,
			Title:     "Complete 3 tasks",
			Objective: ObjectiveTaskCompletions,
			Target:    3,
			Reward:    25,
		},
		{
			Kind:      QuestDaily,
			Title:     fmt.Sprintf("Branch out: train your %s side", balanceStat),
			Objective: ObjectiveCategoryBalance,
			Target:    1,
			Reward:    20,
		},
	}
}

// GenerateWeeklyQuests returns the two fixed weekly templates.
func GenerateWeeklyQuests() []QuestDef {
	return []QuestDef{
		{
			Kind:      QuestWeekly,
			Title:     "Focus for 200 minutes this week",
			Objective: ObjectiveFocusMinutes,
			Target:    200,
			Reward:    100,
		},
		{
			Kind:      QuestWeekly,
			Title:     "Complete 20 tasks this week",
			Objective: ObjectiveTaskCompletions,
			Target:    20,
			Reward:    80,
		},
	}
}
