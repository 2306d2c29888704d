package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"focusquest/internal/engine"
	"focusquest/internal/storage"
	"focusquest/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	character *storage.Character
	streak    *storage.Streak
	today     *storage.DailyAggregate
	quests    []storage.Quest
	tasks     []storage.Task

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	character *storage.Character
	streak    *storage.Streak
	today     *storage.DailyAggregate
	quests    []storage.Quest
	tasks     []storage.Task
	err       error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		c, err := m.svc.Bootstrap(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		streak, err := m.svc.StreakRepo().GetFirst(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		today, err := m.svc.AggregateRepo().Get(m.ctx, time.Now().Format(storage.DayLayout))
		if err != nil {
			return loadedMsg{err: err}
		}
		quests, err := m.svc.QuestRepo().ListAll(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.TaskRepo().ListByStatus(m.ctx, engine.TaskStatusTodo)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{character: c, streak: streak, today: today, quests: quests, tasks: tasks}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.character = msg.character
		m.streak = msg.streak
		m.today = msg.today
		m.quests = msg.quests
		m.tasks = msg.tasks
		if m.selected >= len(m.tasks) {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		if msg.res == nil {
			m.lastLog = "Nothing to complete."
			return m, m.loadCmd()
		}
		note := fmt.Sprintf("+%d XP (level %d → %d)", msg.res.XPGain, msg.res.LevelBefore, msg.res.LevelAfter)
		if msg.res.LevelUp {
			note += " " + ui.BadgeLevelUp
		}
		m.lastLog = "Completed: " + note
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case "enter", " ":
			if m.selected < len(m.tasks) {
				return m, m.completeCmd(m.tasks[m.selected].ID)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.loading {
		return ui.Muted.Render("Loading…")
	}
	if m.err != nil {
		return ui.Bad.Render(ui.IconError + " " + m.err.Error())
	}

	var b strings.Builder
	b.WriteString(ui.Heading(ui.IconSparkle, "Focusquest") + "\n\n")
	b.WriteString(ui.Panel.Render(m.characterPanel()) + "\n")
	b.WriteString(ui.Panel.Render(m.todayPanel()) + "\n")
	if len(m.quests) > 0 {
		b.WriteString(ui.Panel.Render(m.questsPanel()) + "\n")
	}
	b.WriteString(ui.Panel.Render(m.tasksPanel()) + "\n")
	b.WriteString(ui.Muted.Render(m.lastLog) + "\n")
	b.WriteString(ui.Muted.Render("↑/↓ select · enter complete · r refresh · q quit"))
	return b.String()
}

func (m boardModel) characterPanel() string {
	c := m.character
	var b strings.Builder
	b.WriteString(ui.LabelValue("Level", fmt.Sprintf("%d / %d", c.Level, c.SeasonCap)))
	b.WriteString("  " + ui.LabelValue("XP", fmt.Sprintf("%d / %d", c.XPCurrent, engine.XPToNext(c.Level))))
	if c.PrestigeRank > 0 {
		b.WriteString("  " + ui.Gold.Render(fmt.Sprintf("%s prestige %d (%d legacy)", ui.IconCrown, c.PrestigeRank, c.LegacyPoints)))
	}
	if m.streak != nil {
		b.WriteString("\n" + ui.Warn.Render(fmt.Sprintf("%s tasks %dd · focus %dd", ui.IconFlame, m.streak.TaskDays, m.streak.FocusDays)))
	}
	b.WriteString("\n")
	for i, key := range engine.AllStats {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(ui.Muted.Render(fmt.Sprintf("%s %d", key, c.Stats[string(key)])))
	}
	return b.String()
}

func (m boardModel) todayPanel() string {
	focus, completions, xp := 0, 0, 0
	if m.today != nil {
		focus = m.today.FocusMinutes
		completions = m.today.Completions
		xp = m.today.XPGained
	}
	return fmt.Sprintf("%s %s  %s  %s",
		ui.IconChart,
		ui.LabelValue("Focus", fmt.Sprintf("%d min", focus)),
		ui.LabelValue("Done", completions),
		ui.LabelValue("XP", xp))
}

func (m boardModel) questsPanel() string {
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconQuest+" Quests") + "\n")
	for i, q := range m.quests {
		if i > 0 {
			b.WriteString("\n")
		}
		mark := ui.Muted.Render(fmt.Sprintf("%d/%d", q.Progress, q.Target))
		if q.Status == engine.QuestComplete {
			mark = ui.Good.Render("done")
		}
		b.WriteString(fmt.Sprintf("%s %s %s", ui.Muted.Render(q.Kind), q.Title, mark))
	}
	return b.String()
}

func (m boardModel) tasksPanel() string {
	if len(m.tasks) == 0 {
		return ui.Muted.Render("No open tasks. Add one with `fq add`.")
	}
	var b strings.Builder
	for i, t := range m.tasks {
		if i > 0 {
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%s %s %s", ui.PriorityText(t.Priority), t.Title, ui.Muted.Render(fmt.Sprintf("(%dm)", t.EstimateMinutes)))
		if t.Recurrence != nil {
			line += " " + ui.IconLoop
		}
		if i == m.selected {
			line = ui.SelectedRow.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
	}
	return b.String()
}
