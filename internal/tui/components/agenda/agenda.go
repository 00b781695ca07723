package agenda

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaizenhq/kaizen/internal/progress"
)

// ToggleMsg asks the parent model to flip today's mark for a habit.
type ToggleMsg struct {
	HabitID string
}

type AddHabitMsg struct{}

type Item struct {
	Entry progress.AgendaItem
}

func (i Item) Title() string {
	box := "[ ]"
	if i.Entry.Done {
		box = "[x]"
	}
	return box + " " + i.Entry.Habit.Name
}

func (i Item) Description() string {
	desc := string(i.Entry.Habit.Category)
	if p := i.Entry.Progress; p != nil {
		desc += fmt.Sprintf(" | %d/%d", p.Count, p.Target)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Habit.Name }

type KeyMap struct {
	Toggle key.Binding
	Add    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m/space", "toggle done"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []progress.AgendaItem, width, height int) Model {
	l := list.New(items(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add}
	}
	return Model{list: l, keys: keys}
}

func items(entries []progress.AgendaItem) []list.Item {
	out := make([]list.Item, len(entries))
	for i, e := range entries {
		out[i] = Item{Entry: e}
	}
	return out
}

// SetEntries replaces the rows while keeping the cursor in range.
func (m *Model) SetEntries(entries []progress.AgendaItem) {
	idx := m.list.Index()
	m.list.SetItems(items(entries))
	if idx >= len(entries) {
		idx = len(entries) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				id := i.Entry.Habit.ID
				return m, func() tea.Msg { return ToggleMsg{HabitID: id} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing due today.\n  Press 'a' to add a habit."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
