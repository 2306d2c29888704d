package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"focusquest/internal/seed"
	"focusquest/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := seed.Apply(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewService(db)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	if _, err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return svc
}

func mustCreateTask(t *testing.T, svc *Service, in CreateTaskInput) *storage.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return task
}

func strp(s string) *string { return &s }

func TestCreateTaskClampsInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{
		Title:           "  Write the report  ",
		Priority:        Priority("urgent!!"),
		EstimateMinutes: -5,
		Subtasks:        []string{"outline", "  ", "draft"},
	})
	if task.Title != "Write the report" {
		t.Fatalf("title = %q", task.Title)
	}
	if task.Priority != string(PriorityMedium) {
		t.Fatalf("priority = %q, want clamped to medium", task.Priority)
	}
	if task.EstimateMinutes != 25 {
		t.Fatalf("estimate = %d, want default 25", task.EstimateMinutes)
	}
	if len(task.Subtasks) != 2 {
		t.Fatalf("subtasks = %d, want blank one dropped", len(task.Subtasks))
	}

	if _, err := svc.CreateTask(ctx, CreateTaskInput{Title: "   "}); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestCompleteTaskAwardsAndRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{
		Title:           "Ship the feature",
		CategoryID:      strp("work"),
		Priority:        PriorityHigh,
		EstimateMinutes: 45,
	})

	res, err := svc.CompleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if res == nil {
		t.Fatal("expected a completion result")
	}
	if res.XPGain < 1 {
		t.Fatalf("xp gain = %d", res.XPGain)
	}
	if len(res.StatGains) == 0 {
		t.Fatal("no stat gains")
	}

	stored, err := svc.TaskRepo().Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != TaskStatusDone || stored.CompletedAt == nil {
		t.Fatalf("stored status = %q, completedAt = %v", stored.Status, stored.CompletedAt)
	}
	if stored.Reward == nil || stored.Reward.XPGain != res.XPGain {
		t.Fatalf("stored reward = %+v, want XP %d", stored.Reward, res.XPGain)
	}

	streak, err := svc.StreakRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if streak.TaskDays != 1 {
		t.Fatalf("task streak = %d, want 1", streak.TaskDays)
	}

	agg, err := svc.AggregateRepo().Get(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if agg == nil || agg.Completions != 1 || agg.XPGained != res.XPGain {
		t.Fatalf("aggregate = %+v", agg)
	}

	events, err := svc.EventRepo().ListByType(ctx, EventTaskCompleted)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("TaskCompleted events = %d, want 1", len(events))
	}
	payload, err := DecodePayload(events[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p := payload.(TaskCompletedPayload); p.TaskID != task.ID || p.XPGain != res.XPGain {
		t.Fatalf("payload = %+v", p)
	}
}

func TestCompleteTaskSilentNoOps(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.CompleteTask(ctx, "no-such-task")
	if err != nil || res != nil {
		t.Fatalf("missing task: res=%v err=%v, want nil/nil", res, err)
	}

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "One-shot"})
	if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	res, err = svc.CompleteTask(ctx, task.ID)
	if err != nil || res != nil {
		t.Fatalf("repeat completion: res=%v err=%v, want nil/nil", res, err)
	}

	res2, err := svc.ReopenTask(ctx, "no-such-task")
	if err != nil || res2 != nil {
		t.Fatalf("reopen missing: res=%v err=%v, want nil/nil", res2, err)
	}
	open := mustCreateTask(t, svc, CreateTaskInput{Title: "Still open"})
	res2, err = svc.ReopenTask(ctx, open.ID)
	if err != nil || res2 != nil {
		t.Fatalf("reopen todo task: res=%v err=%v, want nil/nil", res2, err)
	}
}

func TestCompleteThenReopenRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{
		Title:           "Long refactor",
		CategoryID:      strp("work"),
		Priority:        PriorityHigh,
		EstimateMinutes: 120,
	})

	before, err := svc.CharacterRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}

	res, err := svc.CompleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	rev, err := svc.ReopenTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ReopenTask: %v", err)
	}
	if rev.XPReverted != res.XPGain {
		t.Fatalf("reverted %d XP, awarded %d", rev.XPReverted, res.XPGain)
	}

	after, err := svc.CharacterRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if after.Level != before.Level || after.XPCurrent != before.XPCurrent {
		t.Fatalf("level/xp = %d/%d, want restored %d/%d", after.Level, after.XPCurrent, before.Level, before.XPCurrent)
	}
	for key, v := range before.Stats {
		if after.Stats[key] != v {
			t.Fatalf("stat %s = %d, want restored %d", key, after.Stats[key], v)
		}
	}

	reopened, err := svc.TaskRepo().Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if reopened.Status != TaskStatusTodo || reopened.CompletedAt != nil || reopened.Reward != nil {
		t.Fatalf("reopened task = status %q completedAt %v reward %v", reopened.Status, reopened.CompletedAt, reopened.Reward)
	}

	agg, err := svc.AggregateRepo().Get(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if agg.Completions != 0 || agg.XPGained != 0 {
		t.Fatalf("aggregate after reversal = %+v, want zeroed", agg)
	}

	// Streaks are not rewound by a reopen.
	streak, err := svc.StreakRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if streak.TaskDays != 1 {
		t.Fatalf("task streak = %d, want untouched 1", streak.TaskDays)
	}

	// The ledger keeps both sides of the story.
	all, err := svc.EventRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var completed, reopenedEv bool
	for _, e := range all {
		switch e.Type {
		case EventTaskCompleted:
			completed = true
		case EventTaskReopened:
			reopenedEv = true
		}
	}
	if !completed || !reopenedEv {
		t.Fatalf("ledger missing completion/reopen events: %v", all)
	}
}

func TestCompleteRecurringTaskSpawnsNext(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{
		Title:      "Water the plants",
		Recurrence: &storage.RecurrenceRule{Kind: RecurrenceDailyInterval, IntervalDays: 2},
	})

	res, err := svc.CompleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if res.Spawned == nil {
		t.Fatal("no spawned occurrence")
	}
	if res.Spawned.ID == task.ID {
		t.Fatal("spawned occurrence reused the id")
	}

	todos, err := svc.TaskRepo().ListByStatus(ctx, TaskStatusTodo)
	if err != nil {
		t.Fatalf("list todos: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != res.Spawned.ID {
		t.Fatalf("todos after completion = %+v", todos)
	}
}

func TestCompleteRecurringTaskWithBadRuleStillCompletes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{
		Title:      "Impossible schedule",
		Recurrence: &storage.RecurrenceRule{Kind: RecurrenceWeeklyDays},
	})

	res, err := svc.CompleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if res == nil || res.Spawned != nil {
		t.Fatalf("res = %+v, want completion with no spawn", res)
	}

	stored, err := svc.TaskRepo().Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != TaskStatusDone {
		t.Fatalf("status = %q, want done", stored.Status)
	}
}

func TestRecordFocusSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.RecordFocusSession(ctx, FocusInput{
		DurationMin: 50,
		CategoryID:  strp("learning"),
		Type:        SessionWork,
	})
	if err != nil {
		t.Fatalf("RecordFocusSession: %v", err)
	}
	if res == nil || res.XPGain != 60 {
		t.Fatalf("res = %+v, want 60 XP for 50 min", res)
	}

	streak, err := svc.StreakRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if streak.FocusDays != 1 {
		t.Fatalf("focus streak = %d, want 1", streak.FocusDays)
	}

	agg, err := svc.AggregateRepo().Get(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if agg.FocusMinutes != 50 || agg.CategoryMinutes["learning"] != 50 {
		t.Fatalf("aggregate = %+v", agg)
	}
}

func TestRecordBreakSessionIsNeutral(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.RecordFocusSession(ctx, FocusInput{DurationMin: 10, Type: SessionBreak})
	if err != nil {
		t.Fatalf("RecordFocusSession: %v", err)
	}
	if res != nil {
		t.Fatalf("break session returned %+v, want nil", res)
	}

	c, err := svc.CharacterRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if c.XPLifetime != 0 {
		t.Fatalf("break session awarded %d XP", c.XPLifetime)
	}

	sessions, err := svc.SessionRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want the break stored", len(sessions))
	}
}

func TestRefreshAndSyncQuests(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	quests, err := svc.RefreshQuests(ctx)
	if err != nil {
		t.Fatalf("RefreshQuests: %v", err)
	}
	if len(quests) != 5 {
		t.Fatalf("quests = %d, want 3 daily + 2 weekly", len(quests))
	}

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "Quest fodder", CategoryID: strp("work")})
	if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	stored, err := svc.QuestRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}
	for _, q := range stored {
		if q.Objective == ObjectiveTaskCompletions && q.Progress != 1 {
			t.Fatalf("quest %q progress = %d, want 1", q.Title, q.Progress)
		}
	}

	// Regenerating replaces the sets instead of stacking them.
	if _, err := svc.RefreshQuests(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	stored, err = svc.QuestRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}
	if len(stored) != 5 {
		t.Fatalf("quests after second refresh = %d, want 5", len(stored))
	}
}

func TestSyncQuestsSelfHealsOnReopen(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RefreshQuests(ctx); err != nil {
		t.Fatalf("RefreshQuests: %v", err)
	}
	task := mustCreateTask(t, svc, CreateTaskInput{Title: "Flip-flop"})
	if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if _, err := svc.ReopenTask(ctx, task.ID); err != nil {
		t.Fatalf("ReopenTask: %v", err)
	}

	quests, err := svc.QuestRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}
	for _, q := range quests {
		if q.Objective == ObjectiveTaskCompletions && q.Progress != 0 {
			t.Fatalf("quest %q progress = %d after reopen, want 0", q.Title, q.Progress)
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RefreshQuests(ctx); err != nil {
		t.Fatalf("RefreshQuests: %v", err)
	}
	task := mustCreateTask(t, svc, CreateTaskInput{Title: "Once"})
	if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	before, err := svc.QuestRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}
	eventsBefore, err := svc.EventRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}

	// Re-running the syncs with no new activity must not change any row or
	// append any event.
	if err := svc.SyncQuests(ctx); err != nil {
		t.Fatalf("SyncQuests: %v", err)
	}
	if err := svc.SyncAchievements(ctx); err != nil {
		t.Fatalf("SyncAchievements: %v", err)
	}

	after, err := svc.QuestRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("quest count drifted: %d -> %d", len(before), len(after))
	}
	for i := range after {
		if after[i].Progress != before[i].Progress || after[i].Status != before[i].Status {
			t.Fatalf("quest %q drifted: %+v -> %+v", after[i].Title, before[i], after[i])
		}
	}
	eventsAfter, err := svc.EventRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(eventsAfter) != len(eventsBefore) {
		t.Fatalf("ledger grew on a no-op sync: %d -> %d", len(eventsBefore), len(eventsAfter))
	}
}

func TestAchievementUnlockIsSticky(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "First ever"})
	if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	row, err := svc.AchievementRepo().GetProgress(ctx, "first_quest")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if row == nil || row.UnlockedAt == nil {
		t.Fatalf("first_quest progress = %+v, want unlocked", row)
	}
	unlockedAt := *row.UnlockedAt

	if _, err := svc.ReopenTask(ctx, task.ID); err != nil {
		t.Fatalf("ReopenTask: %v", err)
	}

	row, err = svc.AchievementRepo().GetProgress(ctx, "first_quest")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if row.Value != 0 {
		t.Fatalf("value = %d after reopen, want recomputed 0", row.Value)
	}
	if row.UnlockedAt == nil || *row.UnlockedAt != unlockedAt {
		t.Fatalf("unlockedAt = %v, want sticky %s", row.UnlockedAt, unlockedAt)
	}

	badges, err := svc.EventRepo().ListByType(ctx, EventBadgeUnlocked)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("BadgeUnlocked events = %d, want exactly 1", len(badges))
	}
}

func TestApplyPrestigeRequiresCap(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ApplyPrestige(ctx); err == nil {
		t.Fatal("expected error below the season cap")
	}

	c, err := svc.CharacterRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	c.Level = c.SeasonCap
	if err := svc.CharacterRepo().Update(ctx, c); err != nil {
		t.Fatalf("update character: %v", err)
	}

	res, err := svc.ApplyPrestige(ctx)
	if err != nil {
		t.Fatalf("ApplyPrestige: %v", err)
	}
	if res.Rank != 1 || res.LegacyGained != 6 {
		t.Fatalf("res = %+v, want rank 1 legacy 6", res)
	}

	c, err = svc.CharacterRepo().GetFirst(ctx)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if c.Level != 1 || c.XPCurrent != 0 {
		t.Fatalf("post-prestige level %d xp %d", c.Level, c.XPCurrent)
	}

	events, err := svc.EventRepo().ListByType(ctx, EventPrestigeApplied)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("PrestigeApplied events = %d, want 1", len(events))
	}
}

func TestSnapshotFromService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := mustCreateTask(t, svc, CreateTaskInput{Title: "secret-task-title", CategoryID: strp("work")})
	if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if _, err := svc.RecordFocusSession(ctx, FocusInput{DurationMin: 30, CategoryID: strp("work")}); err != nil {
		t.Fatalf("RecordFocusSession: %v", err)
	}

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snap, err := svc.Snapshot(ctx, now.AddDate(0, 0, -6), now)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.CompletionsToday != 1 || snap.FocusMinutesToday != 30 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.RecentBadgeID != "first_quest" {
		t.Fatalf("recent badge = %q, want first_quest", snap.RecentBadgeID)
	}
	if len(snap.TopCategories) != 1 || snap.TopCategories[0].CategoryID != "work" {
		t.Fatalf("top categories = %+v", snap.TopCategories)
	}
}
