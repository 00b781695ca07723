package progress

import (
	"math"
	"sort"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// ComputeCategoryScores scores every life area over the trailing periodDays
// ending today. Habits only count from their own start date so that new
// habits are not penalised for days before they existed. The result always
// has one entry per category: areas without habits come first, then the
// rest ordered from the lowest completion rate up.
func ComputeCategoryScores(habits []models.Habit, completions []models.Completion, today time.Time, periodDays int) []models.CategoryScore {
	if periodDays <= 0 {
		periodDays = constants.DefaultScorePeriodDays
	}
	today = utils.TruncateToDay(today)
	periodStartDay := utils.FormatDate(utils.AddDays(today, -periodDays))

	counts := make(map[string]int)
	for _, c := range dedupe(completions) {
		if c.Day >= periodStartDay {
			counts[c.HabitID]++
		}
	}

	scores := make([]models.CategoryScore, 0, len(models.Categories))
	for _, category := range models.Categories {
		score := models.CategoryScore{Category: category}

		for _, h := range habits {
			if h.Category != category {
				continue
			}
			score.TotalHabits++
			score.ExpectedCount += ExpectedOccurrences(h, ActiveDays(h, today, periodDays))
			score.CompletedCount += counts[h.ID]
		}

		score.HasHabits = score.TotalHabits > 0
		score.CompletionRate = CompletionRate(score.CompletedCount, score.ExpectedCount)
		scores = append(scores, score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].HasHabits != scores[j].HasHabits {
			return !scores[i].HasHabits
		}
		return scores[i].CompletionRate < scores[j].CompletionRate
	})

	return scores
}

// CompletionRate returns completed/expected as a percentage rounded to the
// nearest integer and capped at 100. It is 0 when nothing is expected.
func CompletionRate(completed, expected int) int {
	if expected <= 0 {
		return 0
	}
	rate := float64(completed) / float64(expected) * 100
	return int(math.Round(math.Min(100, rate)))
}

// ActiveDays returns how many days of the scoring period the habit has been
// live for, between 1 and periodDays. The habit's start is its StartDate,
// falling back to its creation date, and is clamped to the period start.
func ActiveDays(habit models.Habit, today time.Time, periodDays int) int {
	today = utils.TruncateToDay(today)
	periodStart := utils.AddDays(today, -periodDays)

	effectiveStart := periodStart
	if start, ok := habitStart(habit, today.Location()); ok && start.After(periodStart) {
		effectiveStart = start
	}

	days := utils.DaysBetween(effectiveStart, today)
	if days < 1 {
		days = 1
	}
	if days > periodDays {
		days = periodDays
	}
	return days
}

// ExpectedOccurrences estimates how many completions the habit's rule asks
// for across activeDays. It is never less than 1.
func ExpectedOccurrences(habit models.Habit, activeDays int) int {
	var expected int

	switch rule := habit.Rule().(type) {
	case models.SpecificDays:
		daysPerWeek := len(rule.Days)
		if daysPerWeek == 0 {
			daysPerWeek = constants.FallbackDaysPerWeek
		}
		expected = int(math.Round(float64(daysPerWeek) / constants.DaysPerWeek * float64(activeDays)))
	case models.WeeklyTarget:
		target := WeeklyTarget(rule)
		expected = int(math.Round(float64(target) * (float64(activeDays) / constants.DaysPerWeek)))
	default:
		expected = activeDays
	}

	if expected < 1 {
		expected = 1
	}
	return expected
}

func habitStart(habit models.Habit, loc *time.Location) (time.Time, bool) {
	if habit.StartDate != "" {
		if start, err := utils.ParseDateInLocation(habit.StartDate, loc); err == nil {
			return start, true
		}
	}
	if !habit.CreatedAt.IsZero() {
		return utils.TruncateToDay(habit.CreatedAt.In(loc)), true
	}
	return time.Time{}, false
}
