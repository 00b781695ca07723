package optimizer

import (
	"fmt"
	"math"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/progress"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// SuggestionType represents the kind of change suggested for a habit
type SuggestionType string

const (
	SuggestionReduceTarget   SuggestionType = "reduce_target"
	SuggestionReduceDays     SuggestionType = "reduce_days"
	SuggestionIncreaseTarget SuggestionType = "increase_target"
	SuggestionArchive        SuggestionType = "archive"
)

// Suggestion is a proposed adjustment to a habit's recurrence
type Suggestion struct {
	HabitID        string          `json:"habit_id"`
	HabitName      string          `json:"habit_name"`
	Category       models.Category `json:"category"`
	Type           SuggestionType  `json:"type"`
	Rate           int             `json:"completion_rate"`
	Reason         string          `json:"reason"`
	CurrentValue   interface{}     `json:"current_value,omitempty"`
	SuggestedValue interface{}     `json:"suggested_value,omitempty"`
}

// HabitSource is the slice of storage the analyzer reads from
type HabitSource interface {
	GetAllHabits(userID string, includeArchived, includeDeleted bool) ([]models.Habit, error)
	GetCompletionsForUser(userID, startDay, endDay string) ([]models.Completion, error)
}

// HabitAnalyzer compares each habit's recent completion rate with what its
// recurrence asks for and suggests making it easier or harder
type HabitAnalyzer struct {
	store HabitSource
}

// NewHabitAnalyzer creates a new HabitAnalyzer
func NewHabitAnalyzer(store HabitSource) *HabitAnalyzer {
	return &HabitAnalyzer{store: store}
}

// AnalyzeHabit returns suggestions for one habit over the trailing
// periodDays. Habits that have not been live for long enough get none.
func AnalyzeHabit(habit models.Habit, completions []models.Completion, today time.Time, periodDays int) []Suggestion {
	if periodDays <= 0 {
		periodDays = constants.DefaultScorePeriodDays
	}

	activeDays := progress.ActiveDays(habit, today, periodDays)
	if activeDays < constants.CoachMinActiveDays {
		return nil
	}

	// ComputeCategoryScores over a single habit yields exactly that habit's numbers
	var score models.CategoryScore
	for _, s := range progress.ComputeCategoryScores([]models.Habit{habit}, completions, today, periodDays) {
		if s.HasHabits {
			score = s
		}
	}

	base := Suggestion{
		HabitID:   habit.ID,
		HabitName: habit.Name,
		Category:  habit.Category,
		Rate:      score.CompletionRate,
	}

	if score.CompletedCount == 0 && activeDays >= constants.CoachArchiveMinDays {
		s := base
		s.Type = SuggestionArchive
		s.Reason = fmt.Sprintf("no completions in the last %d days", activeDays)
		return []Suggestion{s}
	}

	var out []Suggestion
	switch rule := habit.Rule().(type) {
	case models.WeeklyTarget:
		target := progress.WeeklyTarget(rule)
		switch {
		case score.CompletionRate < constants.CoachLowRateThreshold && target > constants.MinWeeklyTarget:
			s := base
			s.Type = SuggestionReduceTarget
			s.Reason = fmt.Sprintf("only %d%% of the weekly target was reached", score.CompletionRate)
			s.CurrentValue = map[string]interface{}{"target": target}
			s.SuggestedValue = map[string]interface{}{"target": reduce(target, constants.MinWeeklyTarget)}
			out = append(out, s)
		case score.CompletionRate >= constants.CoachHighRateThreshold && target < constants.MaxWeeklyTarget:
			s := base
			s.Type = SuggestionIncreaseTarget
			s.Reason = "the weekly target was reached every week"
			s.CurrentValue = map[string]interface{}{"target": target}
			s.SuggestedValue = map[string]interface{}{"target": target + 1}
			out = append(out, s)
		}

	case models.SpecificDays:
		if score.CompletionRate < constants.CoachLowRateThreshold && len(rule.Days) > constants.CoachMinSpecificDays {
			s := base
			s.Type = SuggestionReduceDays
			s.Reason = fmt.Sprintf("only %d%% of scheduled days were completed", score.CompletionRate)
			s.CurrentValue = map[string]interface{}{"days_per_week": len(rule.Days)}
			s.SuggestedValue = map[string]interface{}{"days_per_week": reduce(len(rule.Days), constants.CoachMinSpecificDays)}
			out = append(out, s)
		}

	default:
		if score.CompletionRate < constants.CoachLowRateThreshold {
			s := base
			s.Type = SuggestionReduceDays
			s.Reason = fmt.Sprintf("only %d%% of days were completed", score.CompletionRate)
			s.CurrentValue = map[string]interface{}{"recurrence": string(models.RecurrenceDaily)}
			s.SuggestedValue = map[string]interface{}{
				"recurrence":    string(models.RecurrenceSpecificDays),
				"days_per_week": reduce(constants.DaysPerWeek, constants.CoachMinSpecificDays),
			}
			out = append(out, s)
		}
	}

	return out
}

// AnalyzeAll analyzes every live habit of a user
func (a *HabitAnalyzer) AnalyzeAll(userID string, today time.Time, periodDays int) ([]Suggestion, error) {
	if periodDays <= 0 {
		periodDays = constants.DefaultScorePeriodDays
	}

	habits, err := a.store.GetAllHabits(userID, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}

	start := utils.FormatDate(utils.AddDays(today, -periodDays))
	completions, err := a.store.GetCompletionsForUser(userID, start, utils.FormatDate(today))
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}

	var all []Suggestion
	for _, h := range habits {
		suggestions := AnalyzeHabit(h, completions, today, periodDays)
		if len(suggestions) > 0 {
			logger.Debug("coaching suggestions", "habit", h.Name, "count", len(suggestions))
		}
		all = append(all, suggestions...)
	}
	return all, nil
}

// reduce scales n down by the coaching reduction factor, always lowering it
// by at least one and never going below floor.
func reduce(n, floor int) int {
	next := int(math.Floor(float64(n) * constants.CoachReductionFactor))
	if next >= n {
		next = n - 1
	}
	if next < floor {
		next = floor
	}
	return next
}
