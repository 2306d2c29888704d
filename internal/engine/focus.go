package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"focusquest/internal/storage"
)

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// FocusResult reports the reward for a finished work session.
type FocusResult struct {
	SessionID   string
	XPGain      int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
}

// FocusInput describes a finished session to record.
type FocusInput struct {
	Label       *string
	TaskID      *string
	CategoryID  *string
	DurationMin int
	Type        string
}

// RecordFocusSession persists the session and, for completed work sessions
// only, awards XP, advances the focus streak, appends the ledger event, and
// merges the daily aggregate (including per-category minutes). Break
// sessions are stored and otherwise ignored.
func (s *Service) RecordFocusSession(ctx context.Context, in FocusInput) (*FocusResult, error) {
	sessionType := in.Type
	if sessionType == "" {
		sessionType = SessionWork
	}
	duration := in.DurationMin
	if duration < 1 {
		duration = 1
	}

	now := s.now()
	started := now.Add(-minutes(duration))
	session := &storage.FocusSession{
		ID:          uuid.NewString(),
		Label:       in.Label,
		TaskID:      in.TaskID,
		CategoryID:  in.CategoryID,
		StartedAt:   started,
		EndedAt:     &now,
		DurationMin: duration,
		Type:        sessionType,
		Completed:   true,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	if sessionType != SessionWork {
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

	xp := CalculateFocusXP(duration, streak.FocusDays)
	levelBefore := c.Level
	levelUps := ApplyXP(c, xp)
	if err := s.characters.Update(ctx, c); err != nil {
		return nil, err
	}

	today := now.Format(storage.DayLayout)
	UpdateFocusStreak(streak, today)
	if err := s.streaks.Update(ctx, streak); err != nil {
		return nil, err
	}

	categoryID := ""
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}
	if err := s.appendEvent(ctx, now, FocusSessionEndedPayload{
		SessionID:   session.ID,
		CategoryID:  categoryID,
		DurationMin: duration,
		XPGain:      xp,
	}); err != nil {
		return nil, err
	}
	if levelUps > 0 {
		if err := s.appendEvent(ctx, now, LevelUpPayload{LevelBefore: levelBefore, LevelAfter: c.Level}); err != nil {
			return nil, err
		}
	}

	if err := s.aggregates.Apply(ctx, today, storage.AggregateDelta{
		FocusMinutes:    duration,
		XPGained:        xp,
		CategoryID:      categoryID,
		CategoryMinutes: duration,
	}); err != nil {
		return nil, err
	}

	if err := s.SyncQuests(ctx); err != nil {
		return nil, err
	}
	if err := s.SyncAchievements(ctx); err != nil {
		return nil, err
	}

	return &FocusResult{
		SessionID:   session.ID,
		XPGain:      xp,
		LevelBefore: levelBefore,
		LevelAfter:  c.Level,
		LevelUp:     levelUps > 0,
	}, nil
}
