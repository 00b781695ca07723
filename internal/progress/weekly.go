package progress

import (
	"fmt"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// WeeklyCompletionCount counts the completions of habitID whose day falls in
// the inclusive range [weekStartDay, weekEndDay]. Days are compared as
// YYYY-MM-DD strings. Duplicate (habit, user, day) events count once.
func WeeklyCompletionCount(events []models.Completion, habitID, weekStartDay, weekEndDay string) int {
	count := 0
	for _, e := range dedupe(events) {
		if e.HabitID != habitID {
			continue
		}
		if e.Day >= weekStartDay && e.Day <= weekEndDay {
			count++
		}
	}
	return count
}

// WeekProgress is a weekly-target habit's standing for one week.
type WeekProgress struct {
	HabitID  string
	StartDay string
	EndDay   string
	Count    int
	Target   int
}

// Met reports whether the weekly quota has been reached.
func (p WeekProgress) Met() bool {
	return p.Count >= p.Target
}

// Label renders the progress as "count/target this week".
func (p WeekProgress) Label() string {
	return fmt.Sprintf("%d/%d this week", p.Count, p.Target)
}

// WeeklyTarget returns the effective target of a weekly rule, substituting
// the fallback when the configured target is missing.
func WeeklyTarget(rule models.WeeklyTarget) int {
	if rule.Target <= 0 {
		return constants.FallbackWeeklyTarget
	}
	return rule.Target
}

// WeekStartDay returns the rule's week start, substituting the fallback
// when it is outside Sunday..Saturday.
func WeekStartDay(rule models.WeeklyTarget) time.Weekday {
	if utils.ValidateWeekStartDay(rule.WeekStartDay) != nil {
		return time.Weekday(constants.FallbackWeekStartDay)
	}
	return rule.WeekStartDay
}

// WeeklyProgress computes the progress of a weekly-target habit for the
// week containing date, using the habit's own week start day. It returns
// false when the habit does not use a weekly target.
func WeeklyProgress(habit models.Habit, events []models.Completion, date time.Time) (WeekProgress, bool, error) {
	rule, ok := habit.Rule().(models.WeeklyTarget)
	if !ok {
		return WeekProgress{}, false, nil
	}

	start, end, err := utils.WeekBounds(date, WeekStartDay(rule))
	if err != nil {
		return WeekProgress{}, true, fmt.Errorf("habit %s: %w", habit.ID, err)
	}

	return WeekProgress{
		HabitID:  habit.ID,
		StartDay: start,
		EndDay:   end,
		Count:    WeeklyCompletionCount(events, habit.ID, start, end),
		Target:   WeeklyTarget(rule),
	}, true, nil
}
