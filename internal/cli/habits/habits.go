package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/utils"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	List     HabitListCmd     `cmd:"" help:"List habits."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	Mark     HabitMarkCmd     `cmd:"" help:"Toggle a habit's completion for a day."`
	Today    HabitTodayCmd    `cmd:"" help:"Show the habits due today."`
	Log      HabitLogCmd      `cmd:"" help:"Show habit log (ASCII history)."`
	Progress HabitProgressCmd `cmd:"" help:"Show weekly progress of weekly-target habits."`
	Streak   HabitStreakCmd   `cmd:"" help:"Show current and longest streaks."`
	Archive  HabitArchiveCmd  `cmd:"" help:"Archive a habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit (soft delete)."`
	Restore  HabitRestoreCmd  `cmd:"" help:"Restore a deleted habit."`
}

type HabitAddCmd struct {
	Name       string `arg:"" help:"Habit name."`
	Category   string `help:"Life area: Health, Career, Spirit, Mindset or Joy." required:""`
	Recurrence string `help:"daily, specific-days or weekly-target." default:"daily"`
	Days       string `help:"Weekdays for specific-days habits (e.g. mon,wed,fri)."`
	Target     int    `help:"Completions per week for weekly-target habits." default:"3"`
	WeekStart  string `help:"First day of the week for weekly-target habits." default:"sun"`
	Start      string `help:"First active day (YYYY-MM-DD). Defaults to today."`
	End        string `help:"Last active day (YYYY-MM-DD)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return err
	}

	category, ok := models.ParseCategory(c.Category)
	if !ok {
		return kerrors.Usagef("unknown category %q", c.Category)
	}
	rule, err := cli.ParseRecurrence(c.Recurrence, c.Days, c.Target, c.WeekStart)
	if err != nil {
		return err
	}

	start := c.Start
	if start == "" {
		today, err := utils.TodayFromSettings(settings)
		if err != nil {
			return err
		}
		start = utils.FormatDate(today)
	}

	habit := models.Habit{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       strings.TrimSpace(c.Name),
		Category:   category,
		Recurrence: rule,
		StartDate:  start,
		EndDate:    c.End,
		CreatedAt:  time.Now(),
	}

	if err := ctx.CheckHabit(habit); err != nil {
		return err
	}

	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	logger.Info("habit added", "id", habit.ID, "name", habit.Name)
	fmt.Printf("Added habit: %s (%s, %s)\n", habit.Name, habit.Category, cli.FormatRecurrence(habit.Recurrence))
	return nil
}

type HabitEditCmd struct {
	Name       string  `arg:"" help:"Habit to edit."`
	Rename     *string `help:"New name."`
	Category   *string `help:"New category."`
	Recurrence *string `help:"New recurrence: daily, specific-days or weekly-target."`
	Days       string  `help:"Weekdays for specific-days habits."`
	Target     int     `help:"Completions per week for weekly-target habits." default:"3"`
	WeekStart  string  `help:"First day of the week for weekly-target habits." default:"sun"`
	Start      *string `help:"First active day (YYYY-MM-DD)."`
	End        *string `help:"Last active day (YYYY-MM-DD). Pass an empty value to make it ongoing."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
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

	updated := false
	if c.Rename != nil {
		habit.Name = strings.TrimSpace(*c.Rename)
		updated = true
	}
	if c.Category != nil {
		category, ok := models.ParseCategory(*c.Category)
		if !ok {
			return kerrors.Usagef("unknown category %q", *c.Category)
		}
		habit.Category = category
		updated = true
	}
	if c.Recurrence != nil {
		rule, err := cli.ParseRecurrence(*c.Recurrence, c.Days, c.Target, c.WeekStart)
		if err != nil {
			return err
		}
		habit.Recurrence = rule
		updated = true
	}
	if c.Start != nil {
		habit.StartDate = *c.Start
		updated = true
	}
	if c.End != nil {
		habit.EndDate = *c.End
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified.")
		return nil
	}

	if err := ctx.CheckHabit(habit); err != nil {
		return err
	}

	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s (%s, %s)\n", habit.Name, habit.Category, cli.FormatRecurrence(habit.Recurrence))
	return nil
}
