package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/kaizenhq/kaizen/internal/backup"
	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/keyring"
	"github.com/kaizenhq/kaizen/internal/storage/sqlite"
	"github.com/kaizenhq/kaizen/internal/utils"
	"github.com/kaizenhq/kaizen/internal/validation"
)

// errWarning marks a check result that is reported but does not fail the run.
var errWarning = errors.New("warning")

type check struct {
	name    string
	needsDB bool
	run     func(*cli.Context) error
}

var checks = []check{
	{"Database reachable", false, checkDBReachable},
	{"Schema version", true, checkSchema},
	{"Settings", true, checkSettings},
	{"Habit definitions", true, checkHabits},
	{"Challenges", true, checkChallenges},
	{"Completion integrity", true, checkCompletions},
	{"Backups present", false, checkBackups},
	{"Keyring", false, checkKeyring},
	{"Clock/timezone", false, checkClock},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	failed := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errWarning):
			fmt.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			fmt.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed = true
			if c.name == checks[0].name {
				dbReachable = false
			}
		}
	}

	fmt.Println()
	if failed {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func warnf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{errWarning}, args...)...)
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		var one int
		if err := s.GetDB().QueryRow("SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchema(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus()
	if err != nil {
		return err
	}
	if !st.UpToDate() {
		return fmt.Errorf("schema at version %d, latest is %d; run 'kaizen migrate'", st.Current, st.Latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if settings.UserID == "" {
		return errors.New("no user ID recorded; run 'kaizen init'")
	}
	return validation.New().ValidateSettings(settings).Err()
}

func checkHabits(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits("", true, false)
	if err != nil {
		return err
	}
	return validation.New().ValidateHabits(habits).Err()
}

func checkChallenges(ctx *cli.Context) error {
	challenges, err := ctx.Store.GetAllChallenges()
	if err != nil {
		return err
	}
	v := validation.New()
	for _, c := range challenges {
		if err := v.ValidateChallenge(c).Err(); err != nil {
			return err
		}
		if _, err := ctx.Store.GetHabit(c.HabitID); err != nil {
			return fmt.Errorf("challenge %q: %w", c.Name, err)
		}
	}
	return nil
}

// checkCompletions looks for completion days that are not valid dates.
// Duplicates and orphans are prevented by the schema itself.
func checkCompletions(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits("", true, true)
	if err != nil {
		return err
	}
	bad := 0
	for _, h := range habits {
		completions, err := ctx.Store.GetCompletionsForHabit(h.ID, "", maxDay)
		if err != nil {
			return err
		}
		for _, c := range completions {
			if !utils.ValidateDateFormat(c.Day) {
				bad++
			}
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d completion(s) have malformed days", bad)
	}
	return nil
}

func checkBackups(ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return warnf("no backups yet; run 'kaizen backup create'")
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return warnf("newest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return warnf("OS keyring unavailable; secrets must come from %s and %s",
			keyring.DBConnection.Env, keyring.NarratorAPIKey.Env)
	}
	return nil
}

func checkClock(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
