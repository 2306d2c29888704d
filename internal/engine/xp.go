package engine

import (
	"math"

	"focusquest/internal/storage"
)

const (
	// TaskBaseXP is the flat floor every completion builds on.
	TaskBaseXP = 20.0

	// DeadlineBonusXP rewards tasks that were given a deadline.
	DeadlineBonusXP = 12.0

	// SubtaskBonusXP per completed subtask, capped at SubtaskBonusCap.
	SubtaskBonusXP  = 2.0
	SubtaskBonusCap = 10.0

	// FocusXPPerMinute converts work minutes to XP before the streak bonus.
	FocusXPPerMinute = 1.2

	// TrivialEstimateMinutes marks the anti-spam threshold; estimates below
	// it are damped hard.
	TrivialEstimateMinutes = 5
	trivialPenalty         = 0.35

	categoryRepeatDamping = 0.12
	titleRepeatDecay      = 0.8
	softCapPenalty        = 0.4
)

// XPToNext returns the XP threshold to climb out of the given level:
// round(120 + 35*level + 10*level^1.35). Strictly increasing in level.
func XPToNext(level int) int {
	if level < 1 {
		level = 1
	}
	l := float64(level)
	return int(math.Round(120 + 35*l + 10*math.Pow(l, 1.35)))
}

// DailySoftCap is the daily-XP level above which further task XP is damped.
// Callers must supply the real XP earned so far today for the damping to
// take effect.
func DailySoftCap(level int) int {
	return 250 + 25*level
}

// TaskXPInput carries everything CalculateTaskXP needs. CategoryMultiplier
// and NoveltyFactor default to 1 when non-positive.
type TaskXPInput struct {
	Priority           Priority
	HasDeadline        bool
	CompletedSubtasks  int
	EstimateMinutes    int
	SameCategoryToday  int
	RepeatedTitle24h   int
	DailyXPBefore      int
	Level              int
	CategoryMultiplier float64
	NoveltyFactor      float64
}

// CalculateTaskXP computes the XP award for a task completion, including
// the anti-exploit penalties for repetitive and trivially-sized tasks.
// The result is never below 1.
func CalculateTaskXP(in TaskXPInput) int {
	subtaskBonus := math.Min(SubtaskBonusCap, SubtaskBonusXP*float64(in.CompletedSubtasks))
	base := TaskBaseXP + float64(in.Priority.Bonus()) + subtaskBonus
	if in.HasDeadline {
		base += DeadlineBonusXP
	}

	durationFactor := clampFloat(math.Log(1+float64(in.EstimateMinutes)/15), 0.6, 1.8)

	novelty := in.NoveltyFactor
	if novelty <= 0 {
		novelty = 1
	}
	categoryMult := in.CategoryMultiplier
	if categoryMult <= 0 {
		categoryMult = 1
	}

	xp := base * durationFactor * novelty * categoryMult

	if in.EstimateMinutes < TrivialEstimateMinutes {
		xp *= trivialPenalty
	}
	xp *= 1 / (1 + categoryRepeatDamping*float64(in.SameCategoryToday))
	xp *= math.Pow(titleRepeatDecay, float64(in.RepeatedTitle24h))
	if in.DailyXPBefore > DailySoftCap(in.Level) {
		xp *= softCapPenalty
	}

	out := int(math.Round(xp))
	if out < 1 {
		out = 1
	}
	return out
}

// CalculateFocusXP converts completed work minutes to XP with a small
// session-streak bonus capped at 15%.
func CalculateFocusXP(workMinutes, streakSessions int) int {
	if streakSessions < 0 {
		streakSessions = 0
	}
	bonus := math.Min(0.15, float64(streakSessions)*0.03)
	xp := int(math.Round(float64(workMinutes) * FocusXPPerMinute * (1 + bonus)))
	if xp < 1 {
		xp = 1
	}
	return xp
}

// ApplyXP adds xpGain to the character, leveling up as many times as the
// thresholds allow (capped at SeasonCap). Lifetime XP always grows by the
// full gain. Returns the number of level-ups.
func ApplyXP(c *storage.Character, xpGain int) int {
	if xpGain <= 0 {
		return 0
	}
	before := c.Level
	c.XPCurrent += xpGain
	c.XPLifetime += xpGain
	for c.Level < c.SeasonCap && c.XPCurrent >= XPToNext(c.Level) {
		c.XPCurrent -= XPToNext(c.Level)
		c.Level++
	}
	return c.Level - before
}

// RemoveXP reverses a previous award, de-leveling while xpCurrent is
// negative. This is an approximate inverse of ApplyXP: exact only when no
// other XP activity happened between award and reversal.
func RemoveXP(c *storage.Character, xpLoss int) {
	if xpLoss <= 0 {
		return
	}
	c.XPCurrent -= xpLoss
	for c.XPCurrent < 0 && c.Level > 1 {
		c.Level--
		c.XPCurrent += XPToNext(c.Level)
	}
	if c.XPCurrent < 0 {
		c.XPCurrent = 0
	}
	c.XPLifetime -= xpLoss
	if c.XPLifetime < 0 {
		c.XPLifetime = 0
	}
}

// Prestige resets level and current XP, bumps the rank, and grants legacy
// points from the pre-reset level: max(0, floor((level-20)/5)). Stats and
// lifetime XP are untouched. Returns the legacy points gained.
func Prestige(c *storage.Character) int {
	gained := (c.Level - 20) / 5
	if gained < 0 {
		gained = 0
	}
	c.PrestigeRank++
	c.LegacyPoints += gained
	c.Level = 1
	c.XPCurrent = 0
	return gained
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
