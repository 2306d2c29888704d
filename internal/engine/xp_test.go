package engine

import (
	"testing"

	"focusquest/internal/storage"
)

func TestXPToNextMonotonic(t *testing.T) {
	prev := XPToNext(1)
	if prev < 1 {
		t.Fatalf("XPToNext(1)=%d, want positive", prev)
	}
	for level := 2; level <= 60; level++ {
		cur := XPToNext(level)
		if cur <= prev {
			t.Fatalf("XPToNext(%d)=%d not above XPToNext(%d)=%d", level, cur, level-1, prev)
		}
		prev = cur
	}
}

func TestCalculateTaskXPPenalties(t *testing.T) {
	clean := CalculateTaskXP(TaskXPInput{
		Priority:        PriorityMedium,
		EstimateMinutes: 30,
		Level:           1,
	})
	grinded := CalculateTaskXP(TaskXPInput{
		Priority:          PriorityMedium,
		EstimateMinutes:   3,
		SameCategoryToday: 4,
		RepeatedTitle24h:  3,
		Level:             1,
	})
	if grinded >= clean {
		t.Fatalf("penalized completion got %d XP, clean got %d", grinded, clean)
	}

	// Each penalty axis is individually monotone.
	for repeats := 1; repeats <= 5; repeats++ {
		lighter := CalculateTaskXP(TaskXPInput{Priority: PriorityMedium, EstimateMinutes: 30, RepeatedTitle24h: repeats - 1, Level: 1})
		heavier := CalculateTaskXP(TaskXPInput{Priority: PriorityMedium, EstimateMinutes: 30, RepeatedTitle24h: repeats, Level: 1})
		if heavier > lighter {
			t.Fatalf("title repeat %d awarded %d, repeat %d awarded %d", repeats, heavier, repeats-1, lighter)
		}
	}
	for same := 1; same <= 5; same++ {
		lighter := CalculateTaskXP(TaskXPInput{Priority: PriorityMedium, EstimateMinutes: 30, SameCategoryToday: same - 1, Level: 1})
		heavier := CalculateTaskXP(TaskXPInput{Priority: PriorityMedium, EstimateMinutes: 30, SameCategoryToday: same, Level: 1})
		if heavier > lighter {
			t.Fatalf("category repeat %d awarded %d, repeat %d awarded %d", same, heavier, same-1, lighter)
		}
	}
}

func TestCalculateTaskXPFloorsAtOne(t *testing.T) {
	got := CalculateTaskXP(TaskXPInput{
		Priority:          PriorityLow,
		EstimateMinutes:   1,
		SameCategoryToday: 20,
		RepeatedTitle24h:  20,
		DailyXPBefore:     10000,
		Level:             1,
	})
	if got != 1 {
		t.Fatalf("fully penalized completion = %d, want floor of 1", got)
	}
}

func TestCalculateTaskXPSoftCap(t *testing.T) {
	under := CalculateTaskXP(TaskXPInput{Priority: PriorityMedium, EstimateMinutes: 30, Level: 1, DailyXPBefore: DailySoftCap(1)})
	over := CalculateTaskXP(TaskXPInput{Priority: PriorityMedium, EstimateMinutes: 30, Level: 1, DailyXPBefore: DailySoftCap(1) + 1})
	if over >= under {
		t.Fatalf("over-cap completion got %d XP, under-cap got %d", over, under)
	}
}

func TestApplyXPLevelsUpWithCarry(t *testing.T) {
	c := &storage.Character{Level: 1, SeasonCap: storage.DefaultSeasonCap}
	ups := ApplyXP(c, XPToNext(1)+10)
	if ups != 1 {
		t.Fatalf("level-ups = %d, want 1", ups)
	}
	if c.Level != 2 || c.XPCurrent != 10 {
		t.Fatalf("got level %d xp %d, want level 2 xp 10", c.Level, c.XPCurrent)
	}
	if c.XPLifetime != XPToNext(1)+10 {
		t.Fatalf("lifetime = %d, want %d", c.XPLifetime, XPToNext(1)+10)
	}
}

func TestApplyXPRespectsSeasonCap(t *testing.T) {
	c := &storage.Character{Level: storage.DefaultSeasonCap, SeasonCap: storage.DefaultSeasonCap}
	ApplyXP(c, 1_000_000)
	if c.Level != storage.DefaultSeasonCap {
		t.Fatalf("level = %d, want pinned at %d", c.Level, storage.DefaultSeasonCap)
	}
}

func TestRemoveXPDeLevels(t *testing.T) {
	c := &storage.Character{Level: 1, SeasonCap: storage.DefaultSeasonCap}
	gain := XPToNext(1) + 10
	ApplyXP(c, gain)
	RemoveXP(c, gain)
	if c.Level != 1 || c.XPCurrent != 0 {
		t.Fatalf("after reversal level %d xp %d, want level 1 xp 0", c.Level, c.XPCurrent)
	}
	if c.XPLifetime != 0 {
		t.Fatalf("lifetime = %d, want 0", c.XPLifetime)
	}
}

func TestPrestigeLegacyPoints(t *testing.T) {
	c := &storage.Character{Level: 40, XPCurrent: 123, PrestigeRank: 1, LegacyPoints: 2, SeasonCap: storage.DefaultSeasonCap}
	gained := Prestige(c)
	if gained != 4 {
		t.Fatalf("legacy gained = %d, want 4", gained)
	}
	if c.PrestigeRank != 2 || c.LegacyPoints != 6 {
		t.Fatalf("rank %d legacy %d, want rank 2 legacy 6", c.PrestigeRank, c.LegacyPoints)
	}
	if c.Level != 1 || c.XPCurrent != 0 {
		t.Fatalf("post-prestige level %d xp %d, want fresh level 1", c.Level, c.XPCurrent)
	}
}

func TestPrestigeNeverNegative(t *testing.T) {
	c := &storage.Character{Level: 20, SeasonCap: storage.DefaultSeasonCap}
	if gained := Prestige(c); gained != 0 {
		t.Fatalf("legacy gained = %d, want 0 at level 20", gained)
	}
}

func TestCalculateFocusXP(t *testing.T) {
	if got := CalculateFocusXP(50, 0); got != 60 {
		t.Fatalf("50 min no streak = %d, want 60", got)
	}
	if got := CalculateFocusXP(100, 2); got != 127 {
		t.Fatalf("100 min streak 2 = %d, want 127", got)
	}
	// Streak bonus caps at 15%.
	if got := CalculateFocusXP(100, 50); got != 138 {
		t.Fatalf("100 min long streak = %d, want 138", got)
	}
	if got := CalculateFocusXP(0, 0); got != 1 {
		t.Fatalf("zero minutes = %d, want floor of 1", got)
	}
}
