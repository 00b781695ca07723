package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/storage"
	"github.com/kaizenhq/kaizen/internal/storage/sqlite"
	"github.com/kaizenhq/kaizen/internal/tui/components/agenda"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// failingStore rejects every completion write.
type failingStore struct {
	storage.Provider
}

func (failingStore) ToggleCompletion(string, string, string) (bool, error) {
	return false, errors.New("disk full")
}

func setupTestContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	habits := []models.Habit{
		{ID: "run", Name: "Run", Category: models.CategoryHealth, Recurrence: models.Daily{}},
		{ID: "read", Name: "Read", Category: models.CategoryMindset, Recurrence: models.Daily{}},
	}
	for _, h := range habits {
		h.UserID = settings.UserID
		h.StartDate = "2020-01-01"
		if err := store.AddHabit(h); err != nil {
			t.Fatal(err)
		}
	}
	return &cli.Context{Store: store, Scheduler: scheduler.New()}, settings.UserID
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestNewModel(t *testing.T) {
	ctx, userID := setupTestContext(t)
	m, err := newModel(ctx)
	if err != nil {
		t.Fatalf("newModel() error = %v", err)
	}
	if m.snap.UserID != userID {
		t.Errorf("user = %s, want %s", m.snap.UserID, userID)
	}
	if m.state != constants.StateToday {
		t.Errorf("initial state = %v", m.state)
	}
	if len(m.scores) != len(models.Categories) {
		t.Errorf("got %d scores, want one per category", len(m.scores))
	}
	if v := m.View(); !strings.Contains(v, "Run") || !strings.Contains(v, "Read") {
		t.Errorf("today view missing habits:\n%s", v)
	}
}

func TestToggle_Optimistic(t *testing.T) {
	ctx, userID := setupTestContext(t)
	m, err := newModel(ctx)
	if err != nil {
		t.Fatal(err)
	}

	m, cmd := send(t, m, agenda.ToggleMsg{HabitID: "run"})
	if !m.isMarked("run") {
		t.Fatal("toggle should mark the habit before the write completes")
	}
	if cmd == nil {
		t.Fatal("toggle should return a write command")
	}

	// second toggle while the write is in flight is ignored
	m, again := send(t, m, agenda.ToggleMsg{HabitID: "run"})
	if again != nil || !m.isMarked("run") {
		t.Error("toggle while pending should be ignored")
	}

	m, _ = send(t, m, cmd())
	if _, err := ctx.Store.GetCompletion("run", userID, m.day()); err != nil {
		t.Errorf("completion not stored: %v", err)
	}
	if m.err != nil || m.status != "✓ Marked done" {
		t.Errorf("status = %q, err = %v", m.status, m.err)
	}
	if len(m.pending) != 0 {
		t.Errorf("pending not cleared: %v", m.pending)
	}

	m, cmd = send(t, m, agenda.ToggleMsg{HabitID: "run"})
	m, _ = send(t, m, cmd())
	if m.isMarked("run") {
		t.Error("second toggle should unmark")
	}
	if _, err := ctx.Store.GetCompletion("run", userID, m.day()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetCompletion() error = %v, want ErrNotFound", err)
	}
}

func TestToggle_RollbackOnError(t *testing.T) {
	ctx, _ := setupTestContext(t)
	m, err := newModel(ctx)
	if err != nil {
		t.Fatal(err)
	}
	m.ctx = &cli.Context{Store: failingStore{ctx.Store}, Scheduler: ctx.Scheduler}

	m, cmd := send(t, m, agenda.ToggleMsg{HabitID: "read"})
	if !m.isMarked("read") {
		t.Fatal("expected optimistic mark")
	}
	m, _ = send(t, m, cmd())
	if m.isMarked("read") {
		t.Error("failed write should roll the mark back")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "disk full") {
		t.Errorf("err = %v, want the store error", m.err)
	}
}

func TestToggle_Milestone(t *testing.T) {
	ctx, userID := setupTestContext(t)
	settings, _ := ctx.Store.GetSettings()
	today, err := utils.TodayFromSettings(settings)
	if err != nil {
		t.Fatal(err)
	}
	for _, back := range []int{1, 2} {
		day := utils.FormatDate(utils.AddDays(today, -back))
		if _, err := ctx.Store.ToggleCompletion("run", userID, day); err != nil {
			t.Fatal(err)
		}
	}

	m, err := newModel(ctx)
	if err != nil {
		t.Fatal(err)
	}
	m, cmd := send(t, m, agenda.ToggleMsg{HabitID: "run"})
	m, _ = send(t, m, cmd())

	if !strings.Contains(m.status, "3 days in a row") {
		t.Errorf("status = %q, want the 3-day milestone", m.status)
	}
	celebrated, _ := ctx.Store.GetCelebratedMilestones(userID, "run")
	if !celebrated[3] {
		t.Error("milestone not recorded")
	}
}

func TestTabs(t *testing.T) {
	ctx, _ := setupTestContext(t)
	m, err := newModel(ctx)
	if err != nil {
		t.Fatal(err)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != constants.StateScores {
		t.Fatalf("state after tab = %v, want scores", m.state)
	}
	v := m.View()
	for _, want := range []string{"Health", "Career", "n/a"} {
		if !strings.Contains(v, want) {
			t.Errorf("scores view missing %q:\n%s", want, v)
		}
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != constants.StateToday {
		t.Errorf("state after shift+tab = %v, want today", m.state)
	}
}

func TestAddHabit(t *testing.T) {
	ctx, userID := setupTestContext(t)
	m, err := newModel(ctx)
	if err != nil {
		t.Fatal(err)
	}

	m, _ = send(t, m, agenda.AddHabitMsg{})
	if m.state != constants.StateAddHabit || m.form == nil {
		t.Fatal("add should open the form")
	}

	tests := []struct {
		name    string
		form    HabitFormModel
		wantErr bool
	}{
		{"weekly target", HabitFormModel{Name: "Gym", Category: "Health", Recurrence: "weekly-target", Target: "3"}, false},
		{"duplicate name", HabitFormModel{Name: "run", Category: "Health", Recurrence: "daily"}, true},
		{"specific days without days", HabitFormModel{Name: "Yoga", Category: "Spirit", Recurrence: "specific-days"}, true},
		{"target out of range", HabitFormModel{Name: "Swim", Category: "Health", Recurrence: "weekly-target", Target: "9"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			m.habitForm = &form
			err := m.saveHabit()
			if (err != nil) != tt.wantErr {
				t.Fatalf("saveHabit() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	h, err := ctx.Store.GetHabitByName(userID, "Gym")
	if err != nil {
		t.Fatal(err)
	}
	if rule, ok := h.Recurrence.(models.WeeklyTarget); !ok || rule.Target != 3 {
		t.Errorf("recurrence = %#v", h.Recurrence)
	}
	if len(m.snap.Habits) != 3 {
		t.Errorf("snapshot has %d habits after add, want 3", len(m.snap.Habits))
	}
}

func TestRenderScore(t *testing.T) {
	got := renderScore(models.CategoryScore{Category: models.CategoryJoy, HasHabits: true, CompletionRate: 50, CompletedCount: 5, ExpectedCount: 10})
	if !strings.Contains(got, " 50%  5/10") {
		t.Errorf("renderScore() = %q", got)
	}
	if got := renderScore(models.CategoryScore{Category: models.CategoryJoy}); !strings.Contains(got, "n/a") {
		t.Errorf("renderScore() without habits = %q", got)
	}
}
