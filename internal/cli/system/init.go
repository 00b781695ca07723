package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/storage"
	"github.com/kaizenhq/kaizen/internal/storage/postgres"
	"github.com/kaizenhq/kaizen/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initializing."`
	Source string `help:"SQLite path or PostgreSQL connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized kaizen storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", postgres.MaskPassword(c.Source))
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath, ok := ctx.SQLitePath()
	if !ok {
		return kerrors.Usagef("--force is only supported for SQLite databases")
	}
	if c.Source != "" {
		src, _ := filepath.Abs(c.Source)
		dst, _ := filepath.Abs(dbPath)
		if src == dst {
			return kerrors.Usagef("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	err := os.Remove(dbPath)
	switch {
	case err == nil:
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if !postgres.IsConnString(source) {
		return sqlite.NewStore(source), nil
	}
	if err := postgres.ValidateConnString(source); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, kerrors.Usagef("source connection string contains a password; use PGPASSWORD or .pgpass instead")
		}
		return nil, err
	}
	return postgres.New(source), nil
}

// copyFrom copies every record of the source store into the destination.
// Settings are copied too, so the destination keeps the source's user ID.
func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	src, err := openSource(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	dst := ctx.Store

	fmt.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return err
	}
	if err := dst.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Println("  Copying habits and completions...")
	habits, err := src.GetAllHabits("", true, true)
	if err != nil {
		return err
	}
	completions := 0
	for _, h := range habits {
		if err := dst.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
		done, err := src.GetCompletionsForHabit(h.ID, "", maxDay)
		if err != nil {
			return err
		}
		for _, d := range done {
			if _, err := dst.ToggleCompletion(d.HabitID, d.UserID, d.Day); err != nil {
				return fmt.Errorf("failed to add completion %s: %w", d.ID, err)
			}
		}
		completions += len(done)

		celebrated, err := src.GetCelebratedMilestones(h.UserID, h.ID)
		if err != nil {
			return err
		}
		for threshold := range celebrated {
			if err := dst.RecordMilestone(h.UserID, h.ID, threshold); err != nil {
				return err
			}
		}
	}
	fmt.Printf("    Copied %d habits and %d completions\n", len(habits), completions)

	fmt.Println("  Copying challenges...")
	challenges, err := src.GetAllChallenges()
	if err != nil {
		return err
	}
	for _, ch := range challenges {
		if err := dst.AddChallenge(ch); err != nil {
			return fmt.Errorf("failed to add challenge %s: %w", ch.ID, err)
		}
		members, err := src.GetChallengeMembers(ch.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if err := dst.JoinChallenge(ch.ID, m.UserID); err != nil {
				return err
			}
		}
	}
	fmt.Printf("    Copied %d challenges\n", len(challenges))
	return nil
}

// maxDay sorts after every YYYY-MM-DD day.
const maxDay = "9999-12-31"
