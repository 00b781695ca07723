package settings

import (
	"path/filepath"
	"testing"

	"github.com/kaizenhq/kaizen/internal/cli"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return &cli.Context{Store: store, Scheduler: scheduler.New()}
}

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx := setupTestDB(t)

	cmd := &SettingsCmd{Set: map[string]string{
		"timezone":          "Europe/Berlin",
		"week_start_day":    "mon",
		"score_period_days": "14",
	}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.Timezone != "Europe/Berlin" || got.WeekStartDay != 1 || got.ScorePeriodDays != 14 {
		t.Errorf("settings = %+v", got)
	}
}

func TestApply_Rejects(t *testing.T) {
	base := models.Settings{UserID: "u1", Timezone: "Local", ScorePeriodDays: 30}

	tests := []struct {
		name    string
		updates map[string]string
	}{
		{"unknown key", map[string]string{"theme": "dark"}},
		{"bad timezone", map[string]string{"timezone": "Mars/Olympus"}},
		{"bad weekday", map[string]string{"week_start_day": "9"}},
		{"non-numeric period", map[string]string{"score_period_days": "a month"}},
		{"zero period", map[string]string{"score_period_days": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apply(base, tt.updates)
			if !kerrors.IsUsage(err) {
				t.Errorf("apply() = %v, want a usage error", err)
			}
			if got != base {
				t.Errorf("apply() changed settings on error: %+v", got)
			}
		})
	}
}
