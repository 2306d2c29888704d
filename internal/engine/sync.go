package engine

import (
	"context"
	"time"

	"focusquest/internal/storage"
)

// SyncQuests recomputes every quest's progress from scratch out of the
// current entity tables (never from prior stored progress), so progress
// self-heals after deletions and reopens. Only quests whose progress or
// status actually changed are written back.
func (s *Service) SyncQuests(ctx context.Context) error {
	completedTasks, err := s.tasks.CountCompleted(ctx)
	if err != nil {
		return err
	}
	focusMinutes, err := s.sessions.SumCompletedWorkMinutes(ctx)
	if err != nil {
		return err
	}
	byCategory, err := s.tasks.CompletedByCategory(ctx)
	if err != nil {
		return err
	}

	quests, err := s.quests.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := range quests {
		q := quests[i]

		raw := 0
		switch q.Objective {
		case ObjectiveTaskCompletions:
			raw = completedTasks
		case ObjectiveFocusMinutes:
			raw = focusMinutes
		case ObjectiveCategoryBalance:
			if q.CategoryID != nil {
				raw = byCategory[*q.CategoryID]
			} else {
				raw = len(byCategory)
			}
		}

		progress := raw
		if progress < 0 {
			progress = 0
		}
		if progress > q.Target {
			progress = q.Target
		}
		status := q.Status
		if progress >= q.Target {
			status = QuestComplete
		}

		if progress == q.Progress && status == q.Status {
			continue
		}
		q.Progress = progress
		q.Status = status
		if err := s.quests.Put(ctx, &q); err != nil {
			return err
		}
	}
	return nil
}

// SyncAchievements recomputes each achievement's metric from current
// entities and the streak row. UnlockedAt is set the first time the value
// crosses the requirement and never cleared afterwards; a badge is a
// permanent trophy even if the metric later drops.
func (s *Service) SyncAchievements(ctx context.Context) error {
	completedTasks, err := s.tasks.CountCompleted(ctx)
	if err != nil {
		return err
	}
	focusMinutes, err := s.sessions.SumCompletedWorkMinutes(ctx)
	if err != nil {
		return err
	}
	taskStreak := 0
	if streak, err := s.streaks.GetFirst(ctx); err != nil {
		return err
	} else if streak != nil {
		taskStreak = streak.TaskDays
	}

	catalog, err := s.achievements.ListAll(ctx)
	if err != nil {
		return err
	}
	now := s.now()

	for _, a := range catalog {
		value := 0
		switch a.RequirementType {
		case RequireTaskCompletions:
			value = completedTasks
		case RequireFocusMinutes:
			value = focusMinutes
		case RequireTaskStreak:
			value = taskStreak
		default:
			continue
		}

		row, err := s.achievements.GetProgress(ctx, a.ID)
		if err != nil {
			return err
		}

		var unlockedAt *string
		if row != nil {
			unlockedAt = row.UnlockedAt
		}
		newlyUnlocked := unlockedAt == nil && value >= a.RequirementValue
		if newlyUnlocked {
			ts := now.UTC().Format(time.RFC3339)
			unlockedAt = &ts
		}

		if row != nil && row.Value == value && !newlyUnlocked {
			continue
		}
		if err := s.achievements.PutProgress(ctx, storage.AchievementProgress{
			AchievementID: a.ID,
			Value:         value,
			UnlockedAt:    unlockedAt,
		}); err != nil {
			return err
		}

		if newlyUnlocked {
			if err := s.appendEvent(ctx, now, BadgeUnlockedPayload{AchievementID: a.ID, Tier: a.Tier}); err != nil {
				return err
			}
		}
	}
	return nil
}
