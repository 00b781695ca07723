package settings

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/constants"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/validation"
)

type SettingsCmd struct {
	Set map[string]string `help:"Update a setting (key=value). Repeatable." mapsep:","`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if len(c.Set) == 0 {
		printSettings(settings)
		return nil
	}

	updated, err := apply(settings, c.Set)
	if err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(updated); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

// apply returns settings with the given key=value updates, validated.
// Week start days may be given as weekday names.
func apply(settings models.Settings, updates map[string]string) (models.Settings, error) {
	current := models.SettingsToMap(settings)

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := updates[key]
		if _, ok := current[key]; !ok {
			return settings, kerrors.Usagef("unknown setting %q", key)
		}
		if key == constants.SettingWeekStartDay {
			wd, err := cli.ParseWeekday(value)
			if err != nil {
				return settings, err
			}
			value = strconv.Itoa(int(wd))
		}
		current[key] = value
	}

	next, err := models.MapToSettings(current)
	if err != nil {
		return settings, kerrors.Usagef("%v", err)
	}
	if err := validation.New().ValidateSettings(next).Err(); err != nil {
		return settings, kerrors.Usagef("%v", err)
	}
	return next, nil
}

func printSettings(s models.Settings) {
	fmt.Println("Current Settings:")
	fmt.Printf("  User ID:            %s\n", s.UserID)
	fmt.Printf("  Timezone:           %s\n", s.Timezone)
	fmt.Printf("  Week Start Day:     %s\n", weekdayName(s.WeekStartDay))
	fmt.Printf("  Score Period:       %d days\n", s.ScorePeriodDays)
	fmt.Println("\nNarrator Settings:")
	fmt.Printf("  Base URL:           %s\n", s.NarratorBaseURL)
	fmt.Printf("  Model:              %s\n", s.NarratorModel)
}

func weekdayName(d int) string {
	if d < 0 || d > 6 {
		return fmt.Sprintf("invalid (%d)", d)
	}
	return [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}[d]
}
