package progress

import (
	"testing"
	"time"

	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/utils"
)

func scoreFor(t *testing.T, scores []models.CategoryScore, c models.Category) models.CategoryScore {
	t.Helper()
	for _, s := range scores {
		if s.Category == c {
			return s
		}
	}
	t.Fatalf("no score for category %s", c)
	return models.CategoryScore{}
}

func lastNDays(today time.Time, n int) []string {
	days := make([]string, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, utils.FormatDate(today.AddDate(0, 0, -i)))
	}
	return days
}

func TestComputeCategoryScores_NewDailyHabit(t *testing.T) {
	today := date(t, "2026-03-20")
	habit := models.Habit{
		ID:        "walk",
		Category:  models.CategoryHealth,
		StartDate: utils.FormatDate(today.AddDate(0, 0, -10)),
	}
	completions := done("walk", "u1", lastNDays(today, 7)...)

	scores := ComputeCategoryScores([]models.Habit{habit}, completions, today, 30)
	health := scoreFor(t, scores, models.CategoryHealth)

	if health.ExpectedCount != 10 {
		t.Errorf("expected count 10, got %d", health.ExpectedCount)
	}
	if health.CompletedCount != 7 {
		t.Errorf("completed count 7, got %d", health.CompletedCount)
	}
	if health.CompletionRate != 70 {
		t.Errorf("completion rate 70, got %d", health.CompletionRate)
	}
	if !health.HasHabits || health.TotalHabits != 1 {
		t.Errorf("unexpected habit totals %+v", health)
	}
}

func TestComputeCategoryScores_CreatedAtFallback(t *testing.T) {
	today := date(t, "2026-03-20")
	habit := models.Habit{
		ID:        "walk",
		Category:  models.CategoryHealth,
		CreatedAt: today.AddDate(0, 0, -10).Add(9 * time.Hour),
	}
	scores := ComputeCategoryScores([]models.Habit{habit}, nil, today, 30)
	if got := scoreFor(t, scores, models.CategoryHealth).ExpectedCount; got != 10 {
		t.Errorf("expected count 10 from creation date, got %d", got)
	}
}

func TestComputeCategoryScores_EmptyCategorySortsFirst(t *testing.T) {
	today := date(t, "2026-03-20")
	var habits []models.Habit
	var completions []models.Completion
	for _, c := range []models.Category{models.CategoryHealth, models.CategoryCareer, models.CategorySpirit, models.CategoryMindset} {
		id := string(c)
		habits = append(habits, models.Habit{ID: id, Category: c, StartDate: "2026-01-01"})
		completions = append(completions, done(id, "u1", lastNDays(today, 30)...)...)
	}

	scores := ComputeCategoryScores(habits, completions, today, 30)
	if len(scores) != len(models.Categories) {
		t.Fatalf("expected %d scores, got %d", len(models.Categories), len(scores))
	}

	joy := scores[0]
	if joy.Category != models.CategoryJoy {
		t.Fatalf("expected Joy first, got %s", joy.Category)
	}
	if joy.HasHabits || joy.CompletionRate != 0 || joy.TotalHabits != 0 {
		t.Errorf("unexpected empty category score %+v", joy)
	}
	for _, s := range scores[1:] {
		if !s.HasHabits || s.CompletionRate != 100 {
			t.Errorf("expected full score for %s, got %+v", s.Category, s)
		}
	}
}

func TestComputeCategoryScores_FutureStart(t *testing.T) {
	today := date(t, "2026-03-20")
	habit := models.Habit{ID: "later", Category: models.CategoryCareer, StartDate: "2026-04-01"}

	scores := ComputeCategoryScores([]models.Habit{habit}, nil, today, 30)
	career := scoreFor(t, scores, models.CategoryCareer)
	if career.ExpectedCount != 1 || career.CompletedCount != 0 || career.CompletionRate != 0 {
		t.Errorf("unexpected score for future habit %+v", career)
	}
}

func TestComputeCategoryScores_SortedByRate(t *testing.T) {
	today := date(t, "2026-03-20")
	start := "2026-01-01"
	habits := []models.Habit{
		{ID: "a", Category: models.CategoryHealth, StartDate: start},
		{ID: "b", Category: models.CategoryCareer, StartDate: start},
		{ID: "c", Category: models.CategorySpirit, StartDate: start},
		{ID: "d", Category: models.CategoryMindset, StartDate: start},
		{ID: "e", Category: models.CategoryJoy, StartDate: start},
	}
	var completions []models.Completion
	completions = append(completions, done("a", "u1", lastNDays(today, 24)...)...)
	completions = append(completions, done("b", "u1", lastNDays(today, 3)...)...)
	completions = append(completions, done("c", "u1", lastNDays(today, 15)...)...)
	completions = append(completions, done("e", "u1", lastNDays(today, 3)...)...)

	scores := ComputeCategoryScores(habits, completions, today, 30)
	want := []models.Category{
		models.CategoryMindset,
		models.CategoryCareer,
		models.CategoryJoy,
		models.CategorySpirit,
		models.CategoryHealth,
	}
	for i, c := range want {
		if scores[i].Category != c {
			t.Errorf("position %d: got %s, want %s", i, scores[i].Category, c)
		}
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].CompletionRate < scores[i-1].CompletionRate {
			t.Errorf("scores not ascending at %d: %d < %d", i, scores[i].CompletionRate, scores[i-1].CompletionRate)
		}
	}
}

func TestComputeCategoryScores_RateCappedAndDeduped(t *testing.T) {
	today := date(t, "2026-03-20")
	habit := models.Habit{
		ID:         "gym",
		Category:   models.CategoryHealth,
		StartDate:  "2026-01-01",
		Recurrence: models.WeeklyTarget{Target: 2, WeekStartDay: time.Monday},
	}
	days := lastNDays(today, 28)
	completions := append(done("gym", "u1", days...), done("gym", "u1", days...)...)

	scores := ComputeCategoryScores([]models.Habit{habit}, completions, today, 28)
	health := scoreFor(t, scores, models.CategoryHealth)
	if health.ExpectedCount != 8 {
		t.Errorf("expected count 8 for 2x/week over 28 days, got %d", health.ExpectedCount)
	}
	if health.CompletedCount != 28 {
		t.Errorf("duplicates should be ignored: got %d", health.CompletedCount)
	}
	if health.CompletionRate != 100 {
		t.Errorf("rate should be capped at 100, got %d", health.CompletionRate)
	}
}

func TestComputeCategoryScores_IgnoresOldCompletions(t *testing.T) {
	today := date(t, "2026-03-20")
	habit := models.Habit{ID: "read", Category: models.CategoryMindset, StartDate: "2025-01-01"}
	completions := done("read", "u1", "2026-01-01", "2026-02-01", "2026-03-19")

	scores := ComputeCategoryScores([]models.Habit{habit}, completions, today, 30)
	if got := scoreFor(t, scores, models.CategoryMindset).CompletedCount; got != 1 {
		t.Errorf("expected only in-period completions counted, got %d", got)
	}
}

func TestComputeCategoryScores_DefaultPeriod(t *testing.T) {
	today := date(t, "2026-03-20")
	habit := models.Habit{ID: "read", Category: models.CategoryMindset, StartDate: "2025-01-01"}
	scores := ComputeCategoryScores([]models.Habit{habit}, nil, today, 0)
	if got := scoreFor(t, scores, models.CategoryMindset).ExpectedCount; got != 30 {
		t.Errorf("expected default 30-day period, got %d", got)
	}
}

func TestExpectedOccurrences(t *testing.T) {
	tests := []struct {
		name       string
		rule       models.Recurrence
		activeDays int
		want       int
	}{
		{"daily", models.Daily{}, 30, 30},
		{"specific days", models.SpecificDays{Days: []time.Weekday{time.Monday, time.Wednesday, time.Friday}}, 30, 13},
		{"specific days empty falls back to every day", models.SpecificDays{}, 14, 14},
		{"weekly target", models.WeeklyTarget{Target: 3}, 30, 13},
		{"weekly target missing falls back to 3", models.WeeklyTarget{}, 14, 6},
		{"floored at one", models.WeeklyTarget{Target: 1}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedOccurrences(models.Habit{Recurrence: tt.rule}, tt.activeDays)
			if got != tt.want {
				t.Errorf("ExpectedOccurrences = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, expected, want int
	}{
		{0, 0, 0},
		{7, 10, 70},
		{2, 3, 67},
		{15, 10, 100},
	}
	for _, tt := range tests {
		if got := CompletionRate(tt.completed, tt.expected); got != tt.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", tt.completed, tt.expected, got, tt.want)
		}
	}
}
