package scheduler

import (
	"sort"
	"time"

	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// Scheduler picks the habits due on a given date.
type Scheduler struct{}

// New returns a Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// IsHabitActive reports whether date falls inside the habit's inclusive
// [StartDate, EndDate] window. Missing bounds are open. A window whose start
// is after its end contains no dates.
func IsHabitActive(habit models.Habit, date time.Time) bool {
	day := utils.FormatDate(date)
	if habit.StartDate != "" && day < habit.StartDate {
		return false
	}
	if habit.EndDate != "" && day > habit.EndDate {
		return false
	}
	return true
}

// ShouldDisplay reports whether the habit's recurrence rule schedules it on
// date. It does not look at the active window or at completions: weekly
// target habits are scheduled every day, and hiding them once the weekly
// quota is met is up to the caller.
func ShouldDisplay(habit models.Habit, date time.Time) bool {
	switch rule := habit.Rule().(type) {
	case models.Daily:
		return true
	case models.SpecificDays:
		return rule.Includes(date.Weekday())
	case models.WeeklyTarget:
		return true
	default:
		return false
	}
}

// IsDue combines the active window and the recurrence rule.
func IsDue(habit models.Habit, date time.Time) bool {
	return IsHabitActive(habit, date) && ShouldDisplay(habit, date)
}

// DueHabits returns the live habits scheduled on date, ordered by category
// and then by name. Archived and deleted habits are skipped.
func (s *Scheduler) DueHabits(habits []models.Habit, date time.Time) []models.Habit {
	var due []models.Habit
	for _, h := range habits {
		if h.ArchivedAt != nil || h.DeletedAt != nil {
			continue
		}
		if IsDue(h, date) {
			due = append(due, h)
		}
	}

	order := make(map[models.Category]int, len(models.Categories))
	for i, c := range models.Categories {
		order[c] = i
	}
	rank := func(c models.Category) int {
		if i, ok := order[c]; ok {
			return i
		}
		return len(order)
	}

	sort.SliceStable(due, func(i, j int) bool {
		ri, rj := rank(due[i].Category), rank(due[j].Category)
		if ri != rj {
			return ri < rj
		}
		return due[i].Name < due[j].Name
	})

	return due
}

// ScheduledDays returns every date in [from, to] on which the habit is due.
func ScheduledDays(habit models.Habit, from, to time.Time) []time.Time {
	var days []time.Time
	for d := utils.TruncateToDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsDue(habit, d) {
			days = append(days, d)
		}
	}
	return days
}
