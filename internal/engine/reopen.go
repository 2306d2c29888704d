package engine

import (
	"context"

	"focusquest/internal/storage"
)

// ReopenResult reports a reversed completion.
type ReopenResult struct {
	TaskID      string
	XPReverted  int
	LevelBefore int
	LevelAfter  int
	LevelDown   bool
}

// ReopenTask reverses a completion using the reward stored on the task, not
// a recomputation, so the character gets back exactly what the completion
// granted. The daily aggregate for the original completion date is
// decremented, and quest/achievement projections self-heal on the sync that
// follows. Streaks are deliberately not rewound.
func (s *Service) ReopenTask(ctx context.Context, id string) (*ReopenResult, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Status != TaskStatusDone {
		return nil, nil
	}

	now := s.now()
	result := &ReopenResult{TaskID: task.ID}

	if task.Reward != nil {
		c, err := s.characters.GetFirst(ctx)
		if err != nil {
			return nil, err
		}
		if c != nil {
			result.LevelBefore = c.Level
			RemoveXP(c, task.Reward.XPGain)
			RevertStatGains(c, task.Reward.StatGains)
			if err := s.characters.Update(ctx, c); err != nil {
				return nil, err
			}
			result.XPReverted = task.Reward.XPGain
			result.LevelAfter = c.Level
			result.LevelDown = c.Level < result.LevelBefore
		}

		completionDate := now.Format(storage.DayLayout)
		if task.CompletedAt != nil {
			completionDate = task.CompletedAt.Format(storage.DayLayout)
		}
		if err := s.aggregates.Apply(ctx, completionDate, storage.AggregateDelta{
			Completions: -1,
			XPGained:    -task.Reward.XPGain,
		}); err != nil {
			return nil, err
		}
	}

	task.Status = TaskStatusTodo
	task.CompletedAt = nil
	task.Reward = nil
	task.UpdatedAt = now
	if err := s.tasks.Put(ctx, task); err != nil {
		return nil, err
	}

	if err := s.appendEvent(ctx, now, TaskReopenedPayload{TaskID: task.ID, XPReverted: result.XPReverted}); err != nil {
		return nil, err
	}

	if err := s.SyncQuests(ctx); err != nil {
		return nil, err
	}
	if err := s.SyncAchievements(ctx); err != nil {
		return nil, err
	}

	return result, nil
}
