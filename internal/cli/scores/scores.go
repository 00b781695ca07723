package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/keyring"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/narrator"
	"github.com/kaizenhq/kaizen/internal/progress"
)

const barWidth = 20

type ScoreCmd struct {
	Days    int  `help:"Scoring period in days. Defaults to the score_period_days setting."`
	Narrate bool `help:"Add a short narrative generated by the configured model."`
	JSON    bool `name:"json" help:"Print the scores as JSON."`
}

func (c *ScoreCmd) Run(ctx *cli.Context) error {
	if c.Days < 0 {
		return kerrors.Usagef("--days must be positive")
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	days := c.Days
	if days == 0 {
		days = settings.ScorePeriodDays
	}

	snap, err := ctx.LoadSnapshot(days)
	if err != nil {
		return err
	}
	scores := progress.ComputeCategoryScores(snap.Habits, snap.Completions, snap.Today, days)

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scores)
	}

	fmt.Printf("Category scores (last %d days, weakest first):\n\n", days)
	fmt.Print(renderScores(scores))

	if c.Narrate {
		text, err := narrate(snap.Settings, scores)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", text)
	}
	return nil
}

func narrate(settings models.Settings, scores []models.CategoryScore) (string, error) {
	apiKey, _ := keyring.Lookup(keyring.NarratorAPIKey)
	n, err := narrator.New(narrator.Config{
		APIKey:  apiKey,
		BaseURL: settings.NarratorBaseURL,
		Model:   settings.NarratorModel,
	})
	if errors.Is(err, narrator.ErrNoAPIKey) {
		return "", fmt.Errorf("%w; run 'kaizen keyring set-api-key' or set %s", err, keyring.NarratorAPIKey.Env)
	}
	if err != nil {
		return "", err
	}

	text, err := n.Narrate(context.Background(), scores)
	if err != nil {
		logger.Warn("narration failed", "error", err)
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}
	return text, nil
}

func renderScores(scores []models.CategoryScore) string {
	var b strings.Builder
	for _, s := range scores {
		if !s.HasHabits {
			fmt.Fprintf(&b, "%-8s %s  n/a (no habits)\n", s.Category, strings.Repeat("·", barWidth))
			continue
		}
		filled := s.CompletionRate * barWidth / 100
		fmt.Fprintf(&b, "%-8s %s%s %3d%%  %d/%d across %d habit(s)\n",
			s.Category,
			strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
			s.CompletionRate, s.CompletedCount, s.ExpectedCount, s.TotalHabits)
	}
	return b.String()
}
