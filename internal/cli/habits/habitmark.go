package habits

import (
	"fmt"
	"time"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/progress"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/utils"
)

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Day to mark (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return err
	}
	habit, err := ctx.FindHabit(userID, c.Name)
	if err != nil {
		return err
	}
	day, err := ctx.Day(settings, c.Date)
	if err != nil {
		return err
	}
	dayStr := utils.FormatDate(day)

	if !scheduler.IsHabitActive(habit, day) {
		fmt.Printf("Note: %s is outside the active window of %s.\n", dayStr, habit.Name)
	}

	marked, err := ctx.Store.ToggleCompletion(habit.ID, userID, dayStr)
	if err != nil {
		return err
	}
	if !marked {
		fmt.Printf("Unmarked %s for %s\n", habit.Name, dayStr)
		return nil
	}
	fmt.Printf("Marked %s for %s\n", habit.Name, dayStr)

	today, err := utils.TodayFromSettings(settings)
	if err != nil {
		return err
	}
	streak, err := habitStreak(ctx, habit, userID, today)
	if err != nil {
		logger.Warn("failed to compute streak", "habit", habit.ID, "error", err)
		return nil
	}
	return celebrate(ctx, habit, userID, streak)
}

// habitStreak loads the user's whole history of the habit and computes its
// streak as of today.
func habitStreak(ctx *cli.Context, habit models.Habit, userID string, today time.Time) (progress.Streak, error) {
	completions, err := ctx.Store.GetCompletionsForUser(userID, habit.StartDate, utils.FormatDate(today))
	if err != nil {
		return progress.Streak{}, err
	}
	return progress.ComputeStreak(habit, completions, today)
}

// celebrate announces the newest milestone the streak reached, once.
func celebrate(ctx *cli.Context, habit models.Habit, userID string, streak progress.Streak) error {
	celebrated, err := ctx.Store.GetCelebratedMilestones(userID, habit.ID)
	if err != nil {
		return err
	}
	m, ok := progress.NextMilestone(streak, celebrated)
	if !ok {
		return nil
	}
	if err := ctx.Store.RecordMilestone(userID, habit.ID, m.Threshold); err != nil {
		return err
	}
	fmt.Printf("🎉 %s: %s!\n", habit.Name, m)
	return nil
}

type HabitStreakCmd struct {
	Name string `arg:"" optional:"" help:"Habit name. Shows every habit when omitted."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return err
	}
	today, err := utils.TodayFromSettings(settings)
	if err != nil {
		return err
	}

	var habits []models.Habit
	if c.Name != "" {
		h, err := ctx.FindHabit(userID, c.Name)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		habits, err = ctx.Store.GetAllHabits(userID, false, false)
		if err != nil {
			return err
		}
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		streak, err := habitStreak(ctx, h, userID, today)
		if err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}
		fmt.Printf("%-24s current %d %s, longest %d %s\n", h.Name, streak.Current, streak.Unit, streak.Longest, streak.Unit)
		if err := celebrate(ctx, h, userID, streak); err != nil {
			return err
		}
	}
	return nil
}
