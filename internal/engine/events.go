package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"focusquest/internal/storage"
)

// EventSchemaVersion is bumped on breaking payload changes; additive fields
// do not require it.
const EventSchemaVersion = 1

// Event types.
const (
	EventTaskCompleted     = "TaskCompleted"
	EventTaskReopened      = "TaskReopened"
	EventFocusSessionEnded = "FocusSessionEnded"
	EventBadgeUnlocked     = "BadgeUnlocked"
	EventLevelUp           = "LevelUp"
	EventPrestigeApplied   = "PrestigeApplied"
)

// EventPayload is the tagged union of per-type payload schemas.
type EventPayload interface {
	EventType() string
}

type TaskCompletedPayload struct {
	TaskID     string `json:"task_id"`
	CategoryID string `json:"category_id,omitempty"`
	Priority   string `json:"priority"`
	XPGain     int    `json:"xp_gain"`
}

func (TaskCompletedPayload) EventType() string { return EventTaskCompleted }

type TaskReopenedPayload struct {
	TaskID     string `json:"task_id"`
	XPReverted int    `json:"xp_reverted"`
}

func (TaskReopenedPayload) EventType() string { return EventTaskReopened }

type FocusSessionEndedPayload struct {
	SessionID   string `json:"session_id"`
	CategoryID  string `json:"category_id,omitempty"`
	DurationMin int    `json:"duration_min"`
	XPGain      int    `json:"xp_gain"`
}

func (FocusSessionEndedPayload) EventType() string { return EventFocusSessionEnded }

type BadgeUnlockedPayload struct {
	AchievementID string `json:"achievement_id"`
	Tier          string `json:"tier,omitempty"`
}

func (BadgeUnlockedPayload) EventType() string { return EventBadgeUnlocked }

type LevelUpPayload struct {
	LevelBefore int `json:"level_before"`
	LevelAfter  int `json:"level_after"`
}

func (LevelUpPayload) EventType() string { return EventLevelUp }

type PrestigeAppliedPayload struct {
	Rank         int `json:"rank"`
	LegacyGained int `json:"legacy_gained"`
}

func (PrestigeAppliedPayload) EventType() string { return EventPrestigeApplied }

// NewEvent stamps a fresh envelope around a payload. The envelope is
// immutable once appended.
func NewEvent(userID string, occurredAt time.Time, payload EventPayload) (storage.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return storage.Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return storage.Event{
		ID:            uuid.NewString(),
		SchemaVersion: EventSchemaVersion,
		Type:          payload.EventType(),
		OccurredAt:    occurredAt.UTC().Format(time.RFC3339),
		UserID:        userID,
		Payload:       data,
	}, nil
}

// DecodePayload parses an event row back into its typed payload.
func DecodePayload(e storage.Event) (EventPayload, error) {
	var (
		payload EventPayload
		err     error
	)
	switch e.Type {
	case EventTaskCompleted:
		var p TaskCompletedPayload
		err = json.Unmarshal(e.Payload, &p)
		payload = p
	case EventTaskReopened:
		var p TaskReopenedPayload
		err = json.Unmarshal(e.Payload, &p)
		payload = p
	case EventFocusSessionEnded:
		var p FocusSessionEndedPayload
		err = json.Unmarshal(e.Payload, &p)
		payload = p
	case EventBadgeUnlocked:
		var p BadgeUnlockedPayload
		err = json.Unmarshal(e.Payload, &p)
		payload = p
	case EventLevelUp:
		var p LevelUpPayload
		err = json.Unmarshal(e.Payload, &p)
		payload = p
	case EventPrestigeApplied:
		var p PrestigeAppliedPayload
		err = json.Unmarshal(e.Payload, &p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown event type: %q", e.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return payload, nil
}
