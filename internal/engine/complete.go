package engine

import (
	"context"
	"errors"
	"time"

	"focusquest/internal/storage"
)

// CompleteResult is the UI feedback for a completion. Nil result with nil
// error means the precondition wasn't met (missing task, already done,
// no character) and nothing changed.
type CompleteResult struct {
	TaskID      string
	XPGain      int
	StatGains   map[string]int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	Spawned     *storage.Task
}

// CompleteTask runs the full completion sequence: compute the reward with
// anti-exploit context, apply it to the character, advance the task streak,
// append the ledger event, merge the daily aggregate, spawn the next
// occurrence for recurring tasks, and re-sync quests and achievements.
func (s *Service) CompleteTask(ctx context.Context, id string) (*CompleteResult, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Status == TaskStatusDone {
		return nil, nil
	}

	c, err := s.characters.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	streak, err := s.streaks.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := now.Format(storage.DayLayout)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sameCategoryToday := 0
	categoryMult := 1.0
	var weights map[string]float64
	if task.CategoryID != nil {
		sameCategoryToday, err = s.tasks.CountCompletedInCategorySince(ctx, *task.CategoryID, startOfDay)
		if err != nil {
			return nil, err
		}
		cat, err := s.categories.Get(ctx, *task.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			categoryMult = cat.XPMultiplier
			weights = cat.StatWeights
		}
	}

	repeatedTitle, err := s.tasks.CountCompletedWithTitleSince(ctx, task.Title, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	dailyXPBefore := 0
	if agg, err := s.aggregates.Get(ctx, today); err != nil {
		return nil, err
	} else if agg != nil {
		dailyXPBefore = agg.XPGained
	}

	completedSubtasks := 0
	for _, st := range task.Subtasks {
		if st.Done {
			completedSubtasks++
		}
	}

	xp := CalculateTaskXP(TaskXPInput{
		Priority:           Priority(task.Priority),
		HasDeadline:        task.DeadlineAt != nil,
		CompletedSubtasks:  completedSubtasks,
		EstimateMinutes:    task.EstimateMinutes,
		SameCategoryToday:  sameCategoryToday,
		RepeatedTitle24h:   repeatedTitle,
		DailyXPBefore:      dailyXPBefore,
		Level:              c.Level,
		CategoryMultiplier: categoryMult,
	})

	levelBefore := c.Level
	levelUps := ApplyXP(c, xp)
	statGains := CalculateTaskStatGain(xp, Priority(task.Priority), weights, levelUps)
	ApplyStatGains(c, statGains)
	if err := s.characters.Update(ctx, c); err != nil {
		return nil, err
	}

	UpdateTaskStreak(streak, today)
	if err := s.streaks.Update(ctx, streak); err != nil {
		return nil, err
	}

	task.Status = TaskStatusDone
	task.CompletedAt = &now
	task.UpdatedAt = now
	task.Reward = &storage.CompletionReward{
		XPGain:      xp,
		StatGains:   statGains,
		LevelBefore: levelBefore,
		LevelAfter:  c.Level,
	}
	if err := s.tasks.Put(ctx, task); err != nil {
		return nil, err
	}

	categoryID := ""
	if task.CategoryID != nil {
		categoryID = *task.CategoryID
	}
	if err := s.appendEvent(ctx, now, TaskCompletedPayload{
		TaskID:     task.ID,
		CategoryID: categoryID,
		Priority:   task.Priority,
		XPGain:     xp,
	}); err != nil {
		return nil, err
	}
	if levelUps > 0 {
		if err := s.appendEvent(ctx, now, LevelUpPayload{LevelBefore: levelBefore, LevelAfter: c.Level}); err != nil {
			return nil, err
		}
	}

	if err := s.aggregates.Apply(ctx, today, storage.AggregateDelta{Completions: 1, XPGained: xp}); err != nil {
		return nil, err
	}

	var spawned *storage.Task
	if task.Recurrence != nil {
		spawned, err = SpawnNext(task, now)
		if err != nil && !errors.Is(err, ErrNoValidOccurrence) {
			return nil, err
		}
		if spawned != nil {
			if err := s.tasks.Put(ctx, spawned); err != nil {
				return nil, err
			}
		}
	}

	if err := s.SyncQuests(ctx); err != nil {
		return nil, err
	}
	if err := s.SyncAchievements(ctx); err != nil {
		return nil, err
	}

	return &CompleteResult{
		TaskID:      task.ID,
		XPGain:      xp,
		StatGains:   statGains,
		LevelBefore: levelBefore,
		LevelAfter:  c.Level,
		LevelUp:     levelUps > 0,
		Spawned:     spawned,
	}, nil
}

func (s *Service) appendEvent(ctx context.Context, occurredAt time.Time, payload EventPayload) error {
	ev, err := NewEvent(s.userID, occurredAt, payload)
	if err != nil {
		return err
	}
	return s.events.Append(ctx, ev)
}
