package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/progress"
	"github.com/kaizenhq/kaizen/internal/tui/components/agenda"
	"github.com/kaizenhq/kaizen/internal/utils"
	"github.com/kaizenhq/kaizen/internal/validation"
)

// list size used until the first WindowSizeMsg arrives
const (
	defaultWidth  = 80
	defaultHeight = 20
)

type HabitFormModel struct {
	Name       string
	Category   string
	Recurrence string
	Days       string
	Target     string
}

type Model struct {
	ctx           *cli.Context
	snap          cli.Snapshot
	scores        []models.CategoryScore
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	today         agenda.Model
	form          *huh.Form
	habitForm     *HabitFormModel

	// pending maps a habit with an unconfirmed toggle to the marked state
	// it was projected to.
	pending map[string]bool

	status            string
	err               error
	validationWarning string
	quitting          bool
	width             int
	height            int
}

// NewModel loads today's agenda and the category scores for the configured
// user.
func NewModel(ctx *cli.Context) (tea.Model, error) {
	return newModel(ctx)
}

func newModel(ctx *cli.Context) (Model, error) {
	m := Model{
		ctx:     ctx,
		state:   constants.StateToday,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		today:   agenda.New(nil, defaultWidth, defaultHeight),
		pending: make(map[string]bool),
	}
	if err := m.reload(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// reload rereads the snapshot from the store.
func (m *Model) reload() error {
	snap, err := m.ctx.LoadSnapshot(constants.DefaultScorePeriodDays)
	if err != nil {
		return err
	}
	m.snap = snap
	if err := m.refresh(); err != nil {
		return err
	}
	m.updateValidationStatus()
	return nil
}

// refresh recomputes the agenda and scores from the in-memory snapshot.
func (m *Model) refresh() error {
	entries, err := progress.BuildAgenda(m.ctx.Scheduler, m.snap.Habits, m.snap.Completions, m.snap.Today)
	if err != nil {
		return err
	}
	m.today.SetEntries(entries)
	m.scores = progress.ComputeCategoryScores(m.snap.Habits, m.snap.Completions, m.snap.Today, constants.DefaultScorePeriodDays)
	return nil
}

func (m *Model) updateValidationStatus() {
	result := validation.New().ValidateHabits(m.snap.Habits)
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s), run 'kaizen validate'", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

func (m Model) day() string {
	return utils.FormatDate(m.snap.Today)
}

func (m Model) habit(id string) (models.Habit, bool) {
	for _, h := range m.snap.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateToday {
		keys = append(keys, m.keys.Toggle, m.keys.Add)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == constants.StateToday {
		actions = []key.Binding{m.keys.Toggle, m.keys.Add}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
