package engine

type StatKey string

const (
	StatStrength   StatKey = "strength"
	StatIntellect  StatKey = "intellect"
	StatDiscipline StatKey = "discipline"
	StatCreativity StatKey = "creativity"
	StatVitality   StatKey = "vitality"
	StatSocial     StatKey = "social"
)

// AllStats lists the six fixed stat keys in display order.
var AllStats = []StatKey{StatStrength, StatIntellect, StatDiscipline, StatCreativity, StatVitality, StatSocial}

func (k StatKey) IsValid() bool {
	switch k {
	case StatStrength, StatIntellect, StatDiscipline, StatCreativity, StatVitality, StatSocial:
		return true
	default:
		return false
	}
}

// DefaultStat receives points when a category has no usable weights.
const DefaultStat = StatDiscipline

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Bonus is the flat XP added for the priority tier.
func (p Priority) Bonus() int {
	switch p {
	case PriorityHigh:
		return 16
	case PriorityMedium:
		return 8
	default:
		return 0
	}
}

// StatMultiplier scales stat-point gain by priority.
func (p Priority) StatMultiplier() float64 {
	switch p {
	case PriorityHigh:
		return 1.15
	case PriorityLow:
		return 0.85
	default:
		return 1.0
	}
}

// Task statuses.
const (
	TaskStatusTodo = "todo"
	TaskStatusDone = "done"
)

// Focus session types. Only completed work sessions feed progression.
const (
	SessionWork      = "work"
	SessionBreak     = "break"
	SessionLongBreak = "long_break"
)

// Quest kinds.
const (
	QuestDaily     = "daily"
	QuestWeekly    = "weekly"
	QuestStoryline = "storyline"
	QuestBoss      = "boss"
)

// Quest objective types.
const (
	ObjectiveTaskCompletions = "task_completions"
	ObjectiveFocusMinutes    = "focus_minutes"
	ObjectiveCategoryBalance = "category_balance"
)

// Quest statuses.
const (
	QuestActive   = "active"
	QuestComplete = "complete"
)

// Achievement requirement types.
const (
	RequireTaskCompletions = "task_completions"
	RequireFocusMinutes    = "focus_minutes"
	RequireTaskStreak      = "task_streak"
)
