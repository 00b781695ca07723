package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kaizenhq/kaizen/internal/models"
)

func hasConflict(result ValidationResult, ct ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == ct {
			return true
		}
	}
	return false
}

func TestValidateHabit(t *testing.T) {
	validator := New()
	valid := models.Habit{ID: "h1", Name: "Walk", Category: models.CategoryHealth}

	tests := []struct {
		name   string
		mutate func(*models.Habit)
		want   ConflictType
	}{
		{"missing name", func(h *models.Habit) { h.Name = "  " }, ConflictMissingName},
		{"unknown category", func(h *models.Habit) { h.Category = "Sleep" }, ConflictUnknownCategory},
		{"category with wrong case", func(h *models.Habit) { h.Category = "health" }, ConflictUnknownCategory},
		{"target too low", func(h *models.Habit) { h.Recurrence = models.WeeklyTarget{Target: 0} }, ConflictInvalidTarget},
		{"target too high", func(h *models.Habit) { h.Recurrence = models.WeeklyTarget{Target: 8} }, ConflictInvalidTarget},
		{"week start out of range", func(h *models.Habit) {
			h.Recurrence = models.WeeklyTarget{Target: 3, WeekStartDay: 7}
		}, ConflictInvalidWeekStart},
		{"bad weekday", func(h *models.Habit) {
			h.Recurrence = models.SpecificDays{Days: []time.Weekday{time.Monday, 9}}
		}, ConflictInvalidWeekday},
		{"bad start date", func(h *models.Habit) { h.StartDate = "2026/01/01" }, ConflictInvalidDate},
		{"bad end date", func(h *models.Habit) { h.EndDate = "tomorrow" }, ConflictInvalidDate},
		{"start after end", func(h *models.Habit) {
			h.StartDate = "2026-02-01"
			h.EndDate = "2026-01-01"
		}, ConflictInvertedWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid
			tt.mutate(&h)
			result := validator.ValidateHabit(h)
			if !hasConflict(result, tt.want) {
				t.Errorf("expected %s conflict, got %+v", tt.want, result.Conflicts)
			}
		})
	}
}

func TestValidateHabit_Valid(t *testing.T) {
	validator := New()

	habits := []models.Habit{
		{ID: "1", Name: "Walk", Category: models.CategoryHealth},
		{ID: "2", Name: "Gym", Category: models.CategoryHealth,
			Recurrence: models.WeeklyTarget{Target: 3, WeekStartDay: time.Monday}},
		{ID: "3", Name: "Study", Category: models.CategoryCareer,
			Recurrence: models.SpecificDays{Days: []time.Weekday{time.Monday, time.Friday}},
			StartDate:  "2026-01-01", EndDate: "2026-01-01"},
		// an empty day set is allowed
		{ID: "4", Name: "Someday", Category: models.CategoryJoy, Recurrence: models.SpecificDays{}},
	}

	for _, h := range habits {
		result := validator.ValidateHabit(h)
		if result.HasConflicts() {
			t.Errorf("habit %q: unexpected conflicts %+v", h.Name, result.Conflicts)
		}
		if result.Err() != nil {
			t.Errorf("habit %q: Err() = %v", h.Name, result.Err())
		}
	}
}

func TestValidateHabits_DuplicateNames(t *testing.T) {
	now := time.Now()
	habits := []models.Habit{
		{ID: "1", UserID: "u1", Name: "Walk", Category: models.CategoryHealth},
		{ID: "2", UserID: "u1", Name: "walk", Category: models.CategoryHealth},
		{ID: "3", UserID: "u2", Name: "Walk", Category: models.CategoryHealth},
		{ID: "4", UserID: "u2", Name: "Walk", Category: models.CategoryHealth, DeletedAt: &now},
	}

	result := New().ValidateHabits(habits)

	count := 0
	for _, c := range result.Conflicts {
		if c.Type == ConflictDuplicateName {
			count++
			if len(c.IDs) != 2 || c.IDs[0] != "1" || c.IDs[1] != "2" {
				t.Errorf("unexpected duplicate IDs %v", c.IDs)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected 1 duplicate conflict, got %d", count)
	}
}

func TestValidateChallenge(t *testing.T) {
	validator := New()

	ok := models.Challenge{ID: "c1", Name: "January", HabitID: "h1", StartDay: "2026-01-01", EndDay: "2026-01-31"}
	if r := validator.ValidateChallenge(ok); r.HasConflicts() {
		t.Errorf("unexpected conflicts %+v", r.Conflicts)
	}

	bad := models.Challenge{ID: "c2", Name: "Backwards", HabitID: "h1", StartDay: "2026-02-01", EndDay: "2026-01-01"}
	if r := validator.ValidateChallenge(bad); !hasConflict(r, ConflictInvertedWindow) {
		t.Errorf("expected inverted window, got %+v", r.Conflicts)
	}

	missing := models.Challenge{ID: "c3", Name: "Open"}
	r := validator.ValidateChallenge(missing)
	if !hasConflict(r, ConflictMissingHabit) || !hasConflict(r, ConflictInvalidDate) {
		t.Errorf("expected missing habit and date conflicts, got %+v", r.Conflicts)
	}
}

func TestValidateSettings(t *testing.T) {
	validator := New()

	good := models.Settings{Timezone: "America/New_York", WeekStartDay: 1, ScorePeriodDays: 30}
	if r := validator.ValidateSettings(good); r.HasConflicts() {
		t.Errorf("unexpected conflicts %+v", r.Conflicts)
	}

	bad := models.Settings{Timezone: "Mars/Olympus", WeekStartDay: 7, ScorePeriodDays: 0}
	r := validator.ValidateSettings(bad)
	for _, ct := range []ConflictType{ConflictInvalidTimezone, ConflictInvalidWeekStart, ConflictInvalidScorePeriod} {
		if !hasConflict(r, ct) {
			t.Errorf("expected %s conflict", ct)
		}
	}
}

func TestFormatReport(t *testing.T) {
	empty := ValidationResult{}
	if empty.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected empty report %q", empty.FormatReport())
	}

	r := New().ValidateHabit(models.Habit{ID: "h1", Category: "Nope"})
	report := r.FormatReport()
	if !strings.HasPrefix(report, "Conflicts detected:") || !strings.Contains(report, "has no name") {
		t.Errorf("unexpected report %q", report)
	}
	if r.Err() == nil {
		t.Error("Err() should be non-nil when conflicts exist")
	}
}
