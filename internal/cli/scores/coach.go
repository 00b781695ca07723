package scores

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/kaizenhq/kaizen/internal/cli"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/optimizer"
)

type CoachCmd struct {
	Days        int  `help:"Period to judge habits over. Defaults to the score_period_days setting."`
	Interactive bool `help:"Review each suggestion and choose whether to apply it."`
	AutoApply   bool `help:"Apply every suggestion that can be applied automatically."`
}

func (c *CoachCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	days := c.Days
	if days <= 0 {
		days = settings.ScorePeriodDays
	}
	snap, err := ctx.LoadSnapshot(days)
	if err != nil {
		return err
	}

	suggestions, err := optimizer.NewHabitAnalyzer(ctx.Store).AnalyzeAll(snap.UserID, snap.Today, days)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("✅ Every habit is on track. No changes suggested.")
		return nil
	}

	fmt.Printf("Found %d suggestion(s):\n\n", len(suggestions))
	for i, s := range suggestions {
		fmt.Printf("%d. %s\n", i+1, describe(s))
	}

	switch {
	case c.AutoApply:
		applied := 0
		for _, s := range suggestions {
			ok, err := apply(ctx, s)
			if err != nil {
				fmt.Printf("  ❌ %s: %v\n", s.HabitName, err)
				continue
			}
			if ok {
				applied++
			}
		}
		fmt.Printf("\nApplied %d/%d suggestion(s).\n", applied, len(suggestions))
	case c.Interactive:
		return c.runInteractive(ctx, suggestions)
	default:
		fmt.Println("\nUse --interactive to review them or --auto-apply to apply them all.")
	}
	return nil
}

func (c *CoachCmd) runInteractive(ctx *cli.Context, suggestions []optimizer.Suggestion) error {
	for i, s := range suggestions {
		var accept bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("[%d/%d] %s", i+1, len(suggestions), describe(s))).
				Affirmative("Apply").
				Negative("Skip").
				Value(&accept),
		))
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
		if !accept {
			continue
		}
		ok, err := apply(ctx, s)
		if err != nil {
			fmt.Printf("  ❌ Failed to apply: %v\n", err)
			continue
		}
		if ok {
			fmt.Println("  ✅ Applied")
		}
	}
	return nil
}

func describe(s optimizer.Suggestion) string {
	switch s.Type {
	case optimizer.SuggestionArchive:
		return fmt.Sprintf("%s: archive it (%s)", s.HabitName, s.Reason)
	case optimizer.SuggestionReduceTarget, optimizer.SuggestionIncreaseTarget:
		return fmt.Sprintf("%s: change weekly target %v → %v (%s)",
			s.HabitName, value(s.CurrentValue, "target"), value(s.SuggestedValue, "target"), s.Reason)
	case optimizer.SuggestionReduceDays:
		return fmt.Sprintf("%s: schedule it on %v days a week (%s)",
			s.HabitName, value(s.SuggestedValue, "days_per_week"), s.Reason)
	default:
		return fmt.Sprintf("%s: %s (%s)", s.HabitName, s.Type, s.Reason)
	}
}

func value(v interface{}, key string) interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// apply carries out a suggestion. Day reductions need the user to pick the
// days, so they are reported rather than applied.
func apply(ctx *cli.Context, s optimizer.Suggestion) (bool, error) {
	switch s.Type {
	case optimizer.SuggestionArchive:
		return true, ctx.Store.ArchiveHabit(s.HabitID)

	case optimizer.SuggestionReduceTarget, optimizer.SuggestionIncreaseTarget:
		target, ok := value(s.SuggestedValue, "target").(int)
		if !ok {
			return false, fmt.Errorf("suggestion has no target")
		}
		habit, err := ctx.Store.GetHabit(s.HabitID)
		if err != nil {
			return false, err
		}
		rule, ok := habit.Rule().(models.WeeklyTarget)
		if !ok {
			return false, fmt.Errorf("habit %q no longer has a weekly target", habit.Name)
		}
		rule.Target = target
		habit.Recurrence = rule
		return true, ctx.Store.UpdateHabit(habit)

	default:
		fmt.Printf("  ℹ Pick the days yourself: kaizen habit edit %q --recurrence specific-days --days ...\n", s.HabitName)
		return false, nil
	}
}
