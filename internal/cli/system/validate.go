package system

import (
	"fmt"
	"strings"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	v := validation.New()
	var result validation.ValidationResult

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	result.Conflicts = append(result.Conflicts, v.ValidateSettings(settings).Conflicts...)

	habits, err := ctx.Store.GetAllHabits("", true, false)
	if err != nil {
		return err
	}
	result.Conflicts = append(result.Conflicts, v.ValidateHabits(habits).Conflicts...)

	challenges, err := ctx.Store.GetAllChallenges()
	if err != nil {
		return err
	}
	for _, ch := range challenges {
		result.Conflicts = append(result.Conflicts, v.ValidateChallenge(ch).Conflicts...)
	}

	fmt.Println(strings.TrimRight(result.FormatReport(), "\n"))
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
