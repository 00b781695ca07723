package progress

import (
	"fmt"
	"time"

	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/utils"
)

type StreakUnit string

const (
	StreakDays  StreakUnit = "days"
	StreakWeeks StreakUnit = "weeks"
)

// Streak summarises consecutive successful periods of a habit. Daily and
// specific-day habits count scheduled days; weekly-target habits count
// weeks whose target was met. The current period may still be in progress
// and never breaks a streak.
type Streak struct {
	HabitID string
	Current int
	Longest int
	Unit    StreakUnit
}

// ComputeStreak walks the habit's history from its earliest completion up
// to today. completions should already be scoped to a single user.
func ComputeStreak(habit models.Habit, completions []models.Completion, today time.Time) (Streak, error) {
	today = utils.TruncateToDay(today)
	days := completedDays(completions, habit.ID)

	if rule, ok := habit.Rule().(models.WeeklyTarget); ok {
		return weeklyStreak(habit, rule, completions, days, today)
	}

	streak := Streak{HabitID: habit.ID, Unit: StreakDays}
	earliest, ok := earliestDay(days, today.Location())
	if !ok {
		return streak, nil
	}

	run := 0
	for d := earliest; !d.After(today); d = d.AddDate(0, 0, 1) {
		if !scheduler.IsDue(habit, d) {
			continue
		}
		switch {
		case days[utils.FormatDate(d)]:
			run++
			if run > streak.Longest {
				streak.Longest = run
			}
		case d.Equal(today):
			// still pending
		default:
			run = 0
		}
	}
	streak.Current = run
	return streak, nil
}

func weeklyStreak(habit models.Habit, rule models.WeeklyTarget, completions []models.Completion, days map[string]bool, today time.Time) (Streak, error) {
	streak := Streak{HabitID: habit.ID, Unit: StreakWeeks}
	earliest, ok := earliestDay(days, today.Location())
	if !ok {
		return streak, nil
	}

	wsd := WeekStartDay(rule)
	first, err := utils.WeekStart(earliest, wsd)
	if err != nil {
		return streak, fmt.Errorf("habit %s: %w", habit.ID, err)
	}
	current, err := utils.WeekStart(today, wsd)
	if err != nil {
		return streak, fmt.Errorf("habit %s: %w", habit.ID, err)
	}

	target := WeeklyTarget(rule)
	run := 0
	for ws := first; !ws.After(current); ws = ws.AddDate(0, 0, 7) {
		start := utils.FormatDate(ws)
		end := utils.FormatDate(ws.AddDate(0, 0, 6))
		met := WeeklyCompletionCount(completions, habit.ID, start, end) >= target
		switch {
		case met:
			run++
			if run > streak.Longest {
				streak.Longest = run
			}
		case ws.Equal(current):
			// still pending
		default:
			run = 0
		}
	}
	streak.Current = run
	return streak, nil
}

func earliestDay(days map[string]bool, loc *time.Location) (time.Time, bool) {
	earliest := ""
	for d := range days {
		if earliest == "" || d < earliest {
			earliest = d
		}
	}
	if earliest == "" {
		return time.Time{}, false
	}
	t, err := utils.ParseDateInLocation(earliest, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
