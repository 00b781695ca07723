package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/constants"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/progress"
	"github.com/kaizenhq/kaizen/internal/tui/components/agenda"
)

// toggledMsg reports the outcome of a completion write.
type toggledMsg struct {
	habitID   string
	marked    bool
	milestone string
	err       error
}

const numTabs = 2

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// writes started before the form opened still need settling
	if msg, ok := msg.(toggledMsg); ok {
		m.settle(msg)
		return m, nil
	}
	if m.state == constants.StateAddHabit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.today.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % numTabs
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + numTabs) % numTabs
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.err = m.reload()
			m.status = ""
			return m, nil
		}

	case agenda.ToggleMsg:
		return m, m.toggle(msg.HabitID)

	case agenda.AddHabitMsg:
		return m, m.openForm()
	}

	if m.state == constants.StateToday {
		var cmd tea.Cmd
		m.today, cmd = m.today.Update(msg)
		return m, cmd
	}
	return m, nil
}

// toggle flips today's mark in memory right away and writes it in the
// background. A habit with a write in flight ignores further toggles.
func (m *Model) toggle(habitID string) tea.Cmd {
	if _, busy := m.pending[habitID]; busy {
		return nil
	}
	habit, ok := m.habit(habitID)
	if !ok {
		return nil
	}

	mark := !m.isMarked(habitID)
	m.pending[habitID] = mark
	m.project(habitID, mark)
	m.err = nil
	if err := m.refresh(); err != nil {
		m.err = err
	}

	return toggleCmd(m.ctx, habit, m.snap.UserID, m.snap.Today)
}

// settle applies the store's answer to an optimistic toggle, undoing the
// projection when the write failed.
func (m *Model) settle(msg toggledMsg) {
	expected := m.pending[msg.habitID]
	delete(m.pending, msg.habitID)

	switch {
	case msg.err != nil:
		m.project(msg.habitID, !expected)
		m.err = fmt.Errorf("failed to save: %w", msg.err)
		m.status = ""
	case msg.marked != expected:
		// another writer got there first
		m.err = m.reload()
		return
	case msg.milestone != "":
		m.status = "🎉 " + msg.milestone + "!"
	case msg.marked:
		m.status = "✓ Marked done"
	default:
		m.status = "Unmarked"
	}

	if err := m.refresh(); err != nil {
		m.err = err
	}
}

func (m Model) isMarked(habitID string) bool {
	day := m.day()
	for _, c := range m.snap.Completions {
		if c.HabitID == habitID && c.UserID == m.snap.UserID && c.Day == day {
			return true
		}
	}
	return false
}

// project adds or removes today's completion in the snapshot.
func (m *Model) project(habitID string, mark bool) {
	day := m.day()
	if mark {
		if !m.isMarked(habitID) {
			m.snap.Completions = append(m.snap.Completions, models.Completion{
				HabitID:   habitID,
				UserID:    m.snap.UserID,
				Day:       day,
				CreatedAt: time.Now(),
			})
		}
		return
	}
	var kept []models.Completion
	for _, c := range m.snap.Completions {
		if c.HabitID == habitID && c.UserID == m.snap.UserID && c.Day == day {
			continue
		}
		kept = append(kept, c)
	}
	m.snap.Completions = kept
}

func toggleCmd(ctx *cli.Context, habit models.Habit, userID string, today time.Time) tea.Cmd {
	day := today.Format(constants.DateFormat)
	return func() tea.Msg {
		marked, err := ctx.Store.ToggleCompletion(habit.ID, userID, day)
		msg := toggledMsg{habitID: habit.ID, marked: marked, err: err}
		if err != nil || !marked {
			return msg
		}
		label, err := celebrate(ctx, habit, userID, today)
		if err != nil {
			logger.Warn("milestone check failed", "habit", habit.ID, "error", err)
		}
		msg.milestone = label
		return msg
	}
}

// celebrate records the newly reached streak milestone, if any, and
// returns its label.
func celebrate(ctx *cli.Context, habit models.Habit, userID string, today time.Time) (string, error) {
	history, err := ctx.Store.GetCompletionsForHabit(habit.ID, "", today.Format(constants.DateFormat))
	if err != nil {
		return "", err
	}
	var mine []models.Completion
	for _, c := range history {
		if c.UserID == userID {
			mine = append(mine, c)
		}
	}
	streak, err := progress.ComputeStreak(habit, mine, today)
	if err != nil {
		return "", err
	}
	celebrated, err := ctx.Store.GetCelebratedMilestones(userID, habit.ID)
	if err != nil {
		return "", err
	}
	milestone, ok := progress.NextMilestone(streak, celebrated)
	if !ok {
		return "", nil
	}
	if err := ctx.Store.RecordMilestone(userID, habit.ID, milestone.Threshold); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s", habit.Name, milestone), nil
}

func (m *Model) openForm() tea.Cmd {
	m.habitForm = &HabitFormModel{Recurrence: "daily", Target: "3"}
	f := m.habitForm

	categories := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}
	f.Category = categories[0]

	keymap := huh.NewDefaultKeyMap()
	keymap.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(categories...)...).
				Value(&f.Category),
			huh.NewSelect[string]().
				Title("Recurrence").
				Options(huh.NewOptions("daily", "specific-days", "weekly-target")...).
				Value(&f.Recurrence),
			huh.NewInput().
				Title("Days").
				Description("For specific-days, e.g. mon,wed,fri").
				Value(&f.Days),
			huh.NewInput().
				Title("Weekly target").
				Description("For weekly-target, 1 to 7").
				Value(&f.Target).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}),
		),
	).WithKeyMap(keymap).WithShowHelp(true)

	m.previousState = m.state
	m.state = constants.StateAddHabit
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		if err := m.saveHabit(); err != nil {
			m.err = err
			m.status = ""
		} else {
			m.err = nil
			m.status = "✓ Added habit " + strings.TrimSpace(m.habitForm.Name)
		}
		m.form, m.habitForm = nil, nil
		return m, nil
	case huh.StateAborted:
		m.state = m.previousState
		m.form, m.habitForm = nil, nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) saveHabit() error {
	f := m.habitForm
	category, ok := models.ParseCategory(f.Category)
	if !ok {
		return kerrors.Usagef("unknown category %q", f.Category)
	}
	target := constants.FallbackWeeklyTarget
	if f.Target != "" {
		n, err := strconv.Atoi(f.Target)
		if err != nil {
			return kerrors.Usagef("invalid weekly target %q", f.Target)
		}
		target = n
	}
	rule, err := cli.ParseRecurrence(f.Recurrence, f.Days, target, "")
	if err != nil {
		return err
	}

	habit := models.Habit{
		ID:         uuid.New().String(),
		UserID:     m.snap.UserID,
		Name:       strings.TrimSpace(f.Name),
		Category:   category,
		Recurrence: rule,
		StartDate:  m.day(),
		CreatedAt:  time.Now(),
	}
	if err := m.ctx.CheckHabit(habit); err != nil {
		return err
	}
	if err := m.ctx.Store.AddHabit(habit); err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	return m.reload()
}
