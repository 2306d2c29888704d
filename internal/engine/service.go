package engine

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"focusquest/internal/storage"
)

// Service orchestrates the progression loop over the storage repos. All
// mutation paths run load -> compute -> persist -> append event -> update
// aggregate, strictly in that order.
type Service struct {
	db           *sql.DB
	characters   *storage.CharacterRepo
	streaks      *storage.StreakRepo
	categories   *storage.CategoryRepo
	tasks        *storage.TaskRepo
	sessions     *storage.SessionRepo
	quests       *storage.QuestRepo
	achievements *storage.AchievementRepo
	aggregates   *storage.AggregateRepo
	events       *storage.EventRepo

	userID string
	now    func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:           db,
		characters:   storage.NewCharacterRepo(db),
		streaks:      storage.NewStreakRepo(db),
		categories:   storage.NewCategoryRepo(db),
		tasks:        storage.NewTaskRepo(db),
		sessions:     storage.NewSessionRepo(db),
		quests:       storage.NewQuestRepo(db),
		achievements: storage.NewAchievementRepo(db),
		aggregates:   storage.NewAggregateRepo(db),
		events:       storage.NewEventRepo(db),
		userID:       storage.MainUserID,
		now:          time.Now,
	}
}

func (s *Service) CharacterRepo() *storage.CharacterRepo     { return s.characters }
func (s *Service) StreakRepo() *storage.StreakRepo           { return s.streaks }
func (s *Service) CategoryRepo() *storage.CategoryRepo       { return s.categories }
func (s *Service) TaskRepo() *storage.TaskRepo               { return s.tasks }
func (s *Service) SessionRepo() *storage.SessionRepo         { return s.sessions }
func (s *Service) QuestRepo() *storage.QuestRepo             { return s.quests }
func (s *Service) AchievementRepo() *storage.AchievementRepo { return s.achievements }
func (s *Service) AggregateRepo() *storage.AggregateRepo     { return s.aggregates }
func (s *Service) EventRepo() *storage.EventRepo             { return s.events }

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// DefaultStats is the first-launch stat block.
func DefaultStats() map[string]int {
	stats := make(map[string]int, len(AllStats))
	for _, key := range AllStats {
		stats[string(key)] = 5
	}
	return stats
}

// Bootstrap ensures the singleton character and streak rows exist.
func (s *Service) Bootstrap(ctx context.Context) (*storage.Character, error) {
	if _, err := s.streaks.GetOrCreate(ctx); err != nil {
		return nil, err
	}
	return s.characters.GetOrCreate(ctx, DefaultStats())
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", errors.New("title is required")
	}
	return t, nil
}

// CreateTaskInput carries user-entered task fields. Out-of-domain numbers
// are clamped, not rejected.
type CreateTaskInput struct {
	Title           string
	CategoryID      *string
	Priority        Priority
	DeadlineAt      *time.Time
	Recurrence      *storage.RecurrenceRule
	EstimateMinutes int
	Tags            []string
	Notes           string
	Subtasks        []string
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if !priority.IsValid() {
		priority = PriorityMedium
	}
	estimate := in.EstimateMinutes
	if estimate < 1 {
		estimate = 25
	}

	subtasks := make([]storage.Subtask, 0, len(in.Subtasks))
	for _, st := range in.Subtasks {
		st = strings.TrimSpace(st)
		if st == "" {
			continue
		}
		subtasks = append(subtasks, storage.Subtask{ID: uuid.NewString(), Title: st})
	}

	if in.Recurrence != nil {
		in.Recurrence.Label = RuleLabel(in.Recurrence)
	}

	now := s.now()
	t := &storage.Task{
		ID:              uuid.NewString(),
		Title:           title,
		CategoryID:      in.CategoryID,
		Status:          TaskStatusTodo,
		Priority:        string(priority),
		DeadlineAt:      in.DeadlineAt,
		Recurrence:      in.Recurrence,
		EstimateMinutes: estimate,
		Tags:            in.Tags,
		Notes:           in.Notes,
		Subtasks:        subtasks,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.tasks.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// PrestigeResult reports a season reset.
type PrestigeResult struct {
	Rank         int
	LegacyGained int
	LegacyPoints int
}

// ApplyPrestige resets the character's season. Refuses below the season
// cap; prestige exists to drain the XP accumulated at the ceiling.
func (s *Service) ApplyPrestige(ctx context.Context) (*PrestigeResult, error) {
	c, err := s.characters.GetFirst(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	if c.Level < c.SeasonCap {
		return nil, errors.New("prestige requires the season level cap")
	}

	gained := Prestige(c)
	if err := s.characters.Update(ctx, c); err != nil {
		return nil, err
	}

	ev, err := NewEvent(s.userID, s.now(), PrestigeAppliedPayload{Rank: c.PrestigeRank, LegacyGained: gained})
	if err != nil {
		return nil, err
	}
	if err := s.events.Append(ctx, ev); err != nil {
		return nil, err
	}

	return &PrestigeResult{Rank: c.PrestigeRank, LegacyGained: gained, LegacyPoints: c.LegacyPoints}, nil
}

// RefreshQuests regenerates the daily and weekly quest sets from the
// trailing-14-day aggregates and the character's most neglected stats,
// then syncs progress so pre-existing totals count immediately.
func (s *Service) RefreshQuests(ctx context.Context) ([]storage.Quest, error) {
	now := s.now()
	from := now.AddDate(0, 0, -13).Format(storage.DayLayout)
	to := now.Format(storage.DayLayout)
	window, err := s.aggregates.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totalFocus := 0
	for _, agg := range window {
		totalFocus += agg.FocusMinutes
	}

	sig := DailySignals{AvgDailyFocusMinutes: float64(totalFocus) / 14}
	if c, err := s.characters.GetFirst(ctx); err != nil {
		return nil, err
	} else if c != nil {
		sig.NeglectedStats = rankNeglectedStats(c.Stats)
	}

	defs := append(GenerateDailyQuests(sig), GenerateWeeklyQuests()...)
	for _, kind := range []string{QuestDaily, QuestWeekly} {
		if err := s.quests.DeleteByKind(ctx, kind); err != nil {
			return nil, err
		}
	}

	out := make([]storage.Quest, 0, len(defs))
	for _, def := range defs {
		q := &storage.Quest{
			ID:         uuid.NewString(),
			Kind:       def.Kind,
			Title:      def.Title,
			Objective:  def.Objective,
			CategoryID: def.CategoryID,
			Target:     def.Target,
			Reward:     def.Reward,
			Status:     QuestActive,
			CreatedAt:  now,
		}
		if err := s.quests.Put(ctx, q); err != nil {
			return nil, err
		}
		out = append(out, *q)
	}

	if err := s.SyncQuests(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// rankNeglectedStats orders stat keys by ascending value, lowest (most
// neglected) first.
func rankNeglectedStats(stats map[string]int) []StatKey {
	keys := make([]StatKey, 0, len(AllStats))
	keys = append(keys, AllStats...)
	sort.SliceStable(keys, func(i, j int) bool {
		return stats[string(keys[i])] < stats[string(keys[j])]
	})
	return keys
}
