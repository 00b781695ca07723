package habits

import (
	"fmt"
	"strings"

	"github.com/kaizenhq/kaizen/internal/cli"
)

type HabitArchiveCmd struct {
	Name      string `arg:"" help:"Habit name to archive."`
	Unarchive bool   `help:"Unarchive the habit instead."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
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

	if c.Unarchive {
		if err := ctx.Store.UnarchiveHabit(habit.ID); err != nil {
			return err
		}
		fmt.Printf("Unarchived habit: %s\n", habit.Name)
		return nil
	}

	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
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

	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Name)
	fmt.Println("(This is a soft delete. Use 'kaizen habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	userID, err := ctx.User(settings)
	if err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(userID, true, true)
	if err != nil {
		return err
	}

	var id string
	for _, h := range habits {
		if h.DeletedAt == nil {
			if strings.EqualFold(h.Name, c.Name) {
				return fmt.Errorf("a live habit named %q already exists", h.Name)
			}
			continue
		}
		if strings.EqualFold(h.Name, c.Name) {
			id = h.ID
		}
	}
	if id == "" {
		return fmt.Errorf("deleted habit %q not found", c.Name)
	}

	if err := ctx.Store.RestoreHabit(id); err != nil {
		return err
	}
	fmt.Printf("Restored habit: %s\n", c.Name)
	return nil
}
