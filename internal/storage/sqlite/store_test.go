package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/storage"
)

// compile-time check
var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "kaizen.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addHabit(t *testing.T, store *Store, h models.Habit) models.Habit {
	t.Helper()
	if h.UserID == "" {
		h.UserID = "u1"
	}
	if h.Category == "" {
		h.Category = models.CategoryHealth
	}
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("AddHabit(%s) failed: %v", h.Name, err)
	}
	return h
}

func TestInit_DefaultSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if settings.UserID == "" {
		t.Error("expected a generated user ID")
	}
	if settings.Timezone != constants.DefaultTimezone || settings.ScorePeriodDays != constants.DefaultScorePeriodDays {
		t.Errorf("unexpected defaults %+v", settings)
	}

	// Init is idempotent and keeps the user ID
	if err := store.Init(); err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	again, _ := store.GetSettings()
	if again.UserID != settings.UserID {
		t.Errorf("user ID changed from %s to %s", settings.UserID, again.UserID)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	store := setupTestStore(t)

	settings, _ := store.GetSettings()
	settings.Timezone = "Europe/Berlin"
	settings.WeekStartDay = 1
	settings.ScorePeriodDays = 14
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if got != settings {
		t.Errorf("GetSettings() = %+v, want %+v", got, settings)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaizen.db")

	if err := NewStore(path).Load(); err == nil {
		t.Fatal("Load() of a missing database should fail")
	}

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer reopened.Close()

	st, err := reopened.SchemaStatus()
	if err != nil || !st.UpToDate() || st.Current < 1 {
		t.Errorf("unexpected schema status %+v, %v", st, err)
	}
}

func TestHabits_RecurrenceRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	habits := []models.Habit{
		{ID: "h-daily", Name: "Walk", Recurrence: models.Daily{}},
		{ID: "h-days", Name: "Study", Recurrence: models.SpecificDays{Days: []time.Weekday{time.Friday, time.Monday}}},
		{ID: "h-week", Name: "Gym", Recurrence: models.WeeklyTarget{Target: 3, WeekStartDay: time.Monday},
			StartDate: "2026-01-01", EndDate: "2026-06-30"},
	}
	for _, h := range habits {
		addHabit(t, store, h)
	}

	days, err := store.GetHabit("h-days")
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	rule, ok := days.Rule().(models.SpecificDays)
	if !ok || len(rule.Days) != 2 || rule.Days[0] != time.Monday || rule.Days[1] != time.Friday {
		t.Errorf("unexpected specific days rule %#v", days.Recurrence)
	}

	week, err := store.GetHabitByName("u1", "Gym")
	if err != nil {
		t.Fatalf("GetHabitByName() failed: %v", err)
	}
	if wt, ok := week.Rule().(models.WeeklyTarget); !ok || wt.Target != 3 || wt.WeekStartDay != time.Monday {
		t.Errorf("unexpected weekly rule %#v", week.Recurrence)
	}
	if week.StartDate != "2026-01-01" || week.EndDate != "2026-06-30" || week.CreatedAt.IsZero() {
		t.Errorf("unexpected habit fields %+v", week)
	}

	if _, err := store.GetHabitByName("u2", "Gym"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("habit of another user should not be found, got %v", err)
	}
}

func TestHabits_DuplicateNameRejected(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, models.Habit{ID: "a", Name: "Walk"})

	if err := store.AddHabit(models.Habit{ID: "b", UserID: "u1", Name: "Walk", Category: models.CategoryHealth}); err == nil {
		t.Error("expected duplicate live habit name to be rejected")
	}
	// another user may use the same name
	addHabit(t, store, models.Habit{ID: "c", UserID: "u2", Name: "Walk"})
}

func TestHabits_UpdateArchiveDeleteRestore(t *testing.T) {
	store := setupTestStore(t)
	h := addHabit(t, store, models.Habit{ID: "h1", Name: "Walk"})

	h.Name = "Long walk"
	h.Recurrence = models.WeeklyTarget{Target: 2}
	if err := store.UpdateHabit(h); err != nil {
		t.Fatalf("UpdateHabit() failed: %v", err)
	}
	got, _ := store.GetHabit("h1")
	if got.Name != "Long walk" || got.Rule().Type() != models.RecurrenceWeeklyTarget {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := store.ArchiveHabit("h1"); err != nil {
		t.Fatalf("ArchiveHabit() failed: %v", err)
	}
	if err := store.ArchiveHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second ArchiveHabit() error = %v, want ErrNotFound", err)
	}
	live, _ := store.GetAllHabits("u1", false, false)
	withArchived, _ := store.GetAllHabits("u1", true, false)
	if len(live) != 0 || len(withArchived) != 1 {
		t.Errorf("archived filtering: live=%d withArchived=%d", len(live), len(withArchived))
	}
	if err := store.UnarchiveHabit("h1"); err != nil {
		t.Fatalf("UnarchiveHabit() failed: %v", err)
	}

	if _, err := store.ToggleCompletion("h1", "u1", "2026-01-05"); err != nil {
		t.Fatalf("ToggleCompletion() failed: %v", err)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit() failed: %v", err)
	}
	if _, err := store.GetHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted habit lookup error = %v, want ErrNotFound", err)
	}
	all, _ := store.GetAllHabits("u1", true, true)
	if len(all) != 1 || all[0].DeletedAt == nil {
		t.Errorf("expected soft-deleted habit in full listing, got %+v", all)
	}

	if err := store.RestoreHabit("h1"); err != nil {
		t.Fatalf("RestoreHabit() failed: %v", err)
	}
	completions, _ := store.GetCompletionsForHabit("h1", "2026-01-01", "2026-01-31")
	if len(completions) != 1 {
		t.Errorf("restored habit should keep its history, got %d completions", len(completions))
	}

	if err := store.UpdateHabit(models.Habit{ID: "missing", Name: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateHabit(missing) error = %v, want ErrNotFound", err)
	}
}

func TestToggleCompletion(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, models.Habit{ID: "h1", Name: "Walk"})

	marked, err := store.ToggleCompletion("h1", "u1", "2026-01-05")
	if err != nil || !marked {
		t.Fatalf("first toggle: marked=%v err=%v", marked, err)
	}
	c, err := store.GetCompletion("h1", "u1", "2026-01-05")
	if err != nil || c.ID == "" {
		t.Fatalf("GetCompletion() = %+v, %v", c, err)
	}

	marked, err = store.ToggleCompletion("h1", "u1", "2026-01-05")
	if err != nil || marked {
		t.Fatalf("second toggle: marked=%v err=%v", marked, err)
	}
	if _, err := store.GetCompletion("h1", "u1", "2026-01-05"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("completion should be removed, got %v", err)
	}
}

func TestCompletionRanges(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, models.Habit{ID: "h1", Name: "Walk"})
	addHabit(t, store, models.Habit{ID: "h2", Name: "Read", Category: models.CategoryMindset})

	for _, c := range []struct{ habit, user, day string }{
		{"h1", "u1", "2026-01-04"},
		{"h1", "u1", "2026-01-05"},
		{"h2", "u1", "2026-01-08"},
		{"h1", "u2", "2026-01-06"},
		{"h1", "u1", "2026-01-12"},
	} {
		if _, err := store.ToggleCompletion(c.habit, c.user, c.day); err != nil {
			t.Fatalf("ToggleCompletion failed: %v", err)
		}
	}

	userDays, err := store.GetCompletionsForUser("u1", "2026-01-05", "2026-01-11")
	if err != nil {
		t.Fatalf("GetCompletionsForUser() failed: %v", err)
	}
	if len(userDays) != 2 || userDays[0].Day != "2026-01-05" || userDays[1].Day != "2026-01-08" {
		t.Errorf("unexpected user completions %+v", userDays)
	}

	habitDays, err := store.GetCompletionsForHabit("h1", "2026-01-04", "2026-01-06")
	if err != nil {
		t.Fatalf("GetCompletionsForHabit() failed: %v", err)
	}
	if len(habitDays) != 3 {
		t.Errorf("expected 3 completions across users, got %+v", habitDays)
	}
}

func TestChallenges(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, models.Habit{ID: "h1", Name: "Walk"})

	c := models.Challenge{ID: "c1", Name: "January walk", HabitID: "h1", OwnerID: "u1", StartDay: "2026-01-01", EndDay: "2026-01-31"}
	if err := store.AddChallenge(c); err != nil {
		t.Fatalf("AddChallenge() failed: %v", err)
	}
	if err := store.AddChallenge(models.Challenge{ID: "c2", Name: "January walk", HabitID: "h1", OwnerID: "u2", StartDay: "2026-01-01", EndDay: "2026-01-31"}); err == nil {
		t.Error("expected duplicate challenge name to be rejected")
	}

	got, err := store.GetChallengeByName("January walk")
	if err != nil || got.ID != "c1" {
		t.Fatalf("GetChallengeByName() = %+v, %v", got, err)
	}

	if err := store.JoinChallenge("c1", "u2"); err != nil {
		t.Fatalf("JoinChallenge() failed: %v", err)
	}
	if err := store.JoinChallenge("c1", "u2"); err != nil {
		t.Fatalf("joining twice should be a no-op: %v", err)
	}

	members, err := store.GetChallengeMembers("c1")
	if err != nil {
		t.Fatalf("GetChallengeMembers() failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected owner and one member, got %+v", members)
	}

	if err := store.LeaveChallenge("c1", "u2"); err != nil {
		t.Fatalf("LeaveChallenge() failed: %v", err)
	}
	if err := store.LeaveChallenge("c1", "u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second LeaveChallenge() error = %v, want ErrNotFound", err)
	}

	all, _ := store.GetAllChallenges()
	if len(all) != 1 {
		t.Errorf("expected 1 challenge, got %d", len(all))
	}
	if _, err := store.GetChallenge("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetChallenge(nope) error = %v, want ErrNotFound", err)
	}
}

func TestMilestones(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, models.Habit{ID: "h1", Name: "Walk"})

	if err := store.RecordMilestone("u1", "h1", 7); err != nil {
		t.Fatalf("RecordMilestone() failed: %v", err)
	}
	if err := store.RecordMilestone("u1", "h1", 7); err != nil {
		t.Fatalf("recording twice should be a no-op: %v", err)
	}

	celebrated, err := store.GetCelebratedMilestones("u1", "h1")
	if err != nil {
		t.Fatalf("GetCelebratedMilestones() failed: %v", err)
	}
	if !celebrated[7] || len(celebrated) != 1 {
		t.Errorf("unexpected celebrations %v", celebrated)
	}

	other, _ := store.GetCelebratedMilestones("u2", "h1")
	if len(other) != 0 {
		t.Errorf("celebrations leaked across users: %v", other)
	}
}

func TestLoad_OutdatedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaizen.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDB().Exec("DELETE FROM schema_version WHERE version = (SELECT MAX(version) FROM schema_version)"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	stale := NewStore(path)
	if err := stale.Load(); err == nil {
		t.Fatal("Load() with a pending migration should fail")
	}
	// a failed Load leaves the store closed so the next Load checks again
	if err := stale.Load(); err == nil {
		t.Fatal("second Load() should fail too")
	}

	st, err := stale.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus() failed: %v", err)
	}
	if len(st.Pending) != 1 {
		t.Errorf("pending = %d, want 1", len(st.Pending))
	}
	stale.Close()
}
