package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/progress"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/utils"
)

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(userID, c.Archived, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		fmt.Println(formatHabit(h))
	}
	return nil
}

func formatHabit(h models.Habit) string {
	line := fmt.Sprintf("%-24s %-8s %s", h.Name, h.Category, cli.FormatRecurrence(h.Recurrence))
	if h.EndDate != "" {
		line += fmt.Sprintf(" [%s..%s]", h.StartDate, h.EndDate)
	} else if h.StartDate != "" {
		line += fmt.Sprintf(" [from %s]", h.StartDate)
	}
	switch {
	case h.DeletedAt != nil:
		line += " (deleted)"
	case h.ArchivedAt != nil:
		line += " (archived)"
	}
	return line
}

type HabitTodayCmd struct {
	Date string `help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.LoadSnapshot(1)
	if err != nil {
		return err
	}
	day, err := ctx.Day(snap.Settings, c.Date)
	if err != nil {
		return err
	}
	if c.Date != "" {
		if snap, err = loadAround(ctx, snap, day); err != nil {
			return err
		}
	}

	items, err := progress.BuildAgenda(ctx.Scheduler, snap.Habits, snap.Completions, day)
	if err != nil {
		return err
	}
	fmt.Print(renderAgenda(utils.FormatDate(day), items))
	return nil
}

// loadAround replaces the snapshot's completions with the ones within a
// week of day, for commands that look at a date other than today.
func loadAround(ctx *cli.Context, snap cli.Snapshot, day time.Time) (cli.Snapshot, error) {
	start := utils.FormatDate(utils.AddDays(day, -7))
	end := utils.FormatDate(utils.AddDays(day, 7))
	completions, err := ctx.Store.GetCompletionsForUser(snap.UserID, start, end)
	if err != nil {
		return snap, err
	}
	snap.Completions = completions
	return snap, nil
}

func renderAgenda(day string, items []progress.AgendaItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Habits for %s:\n\n", day)
	if len(items) == 0 {
		b.WriteString("Nothing due.\n")
		return b.String()
	}

	done := 0
	for _, item := range items {
		status := "[ ]"
		if item.Done {
			status = "[x]"
			done++
		}
		fmt.Fprintf(&b, "%s %s", status, item.Habit.Name)
		if item.Progress != nil {
			fmt.Fprintf(&b, " (%s)", item.Progress.Label())
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nDone: %d/%d\n", done, len(items))
	return b.String()
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return kerrors.Usagef("--days must be at least 1")
	}
	snap, err := ctx.LoadSnapshot(c.Days)
	if err != nil {
		return err
	}

	habits := snap.Habits
	if c.Habit != "" {
		h, err := ctx.FindHabit(snap.UserID, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	fmt.Printf("Habit log (last %d days):\n\n", c.Days)
	fmt.Print(renderLog(habits, snap.Completions, utils.AddDays(snap.Today, -(c.Days-1)), c.Days))
	return nil
}

const logNameWidth = 20

// renderLog draws one row per habit: x for a completion, . for a missed
// due day and a blank for days the habit was not due.
func renderLog(habits []models.Habit, completions []models.Completion, from time.Time, days int) string {
	var b strings.Builder

	b.WriteString(strings.Repeat(" ", logNameWidth))
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, " %5s", utils.AddDays(from, i).Format("01/02"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", logNameWidth+6*days))
	b.WriteString("\n")

	done := make(map[models.CompletionKey]bool, len(completions))
	for _, c := range completions {
		done[models.CompletionKey{HabitID: c.HabitID, Day: c.Day}] = true
	}

	for _, h := range habits {
		b.WriteString(truncate(h.Name, logNameWidth))
		for i := 0; i < days; i++ {
			d := utils.AddDays(from, i)
			mark := " "
			switch {
			case done[models.CompletionKey{HabitID: h.ID, Day: utils.FormatDate(d)}]:
				mark = "x"
			case scheduler.IsDue(h, d):
				mark = "."
			}
			fmt.Fprintf(&b, "     %s", mark)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(name string, width int) string {
	r := []rune(name)
	if len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return name + strings.Repeat(" ", width-len(r))
}

type HabitProgressCmd struct {
	Date string `help:"Any day of the week to show (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitProgressCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.LoadSnapshot(1)
	if err != nil {
		return err
	}
	day, err := ctx.Day(snap.Settings, c.Date)
	if err != nil {
		return err
	}
	if c.Date != "" {
		if snap, err = loadAround(ctx, snap, day); err != nil {
			return err
		}
	}

	shown := 0
	for _, h := range snap.Habits {
		wp, ok, err := progress.WeeklyProgress(h, snap.Completions, day)
		if err != nil {
			return fmt.Errorf("habit %q: %w", h.Name, err)
		}
		if !ok {
			continue
		}
		status := ""
		if wp.Met() {
			status = " ✓"
		}
		fmt.Printf("%-24s %s (%s..%s)%s\n", h.Name, wp.Label(), wp.StartDay, wp.EndDay, status)
		shown++
	}
	if shown == 0 {
		fmt.Println("No weekly-target habits.")
	}
	return nil
}
