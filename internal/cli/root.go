package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kaizenhq/kaizen/internal/backup"
	kerrors "github.com/kaizenhq/kaizen/internal/errors"
	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/storage"
	"github.com/kaizenhq/kaizen/internal/storage/sqlite"
	"github.com/kaizenhq/kaizen/internal/utils"
	"github.com/kaizenhq/kaizen/internal/validation"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler

	// UserID overrides the user recorded in settings. Needed when several
	// people share one PostgreSQL database.
	UserID string
}

// Settings returns the stored settings with defaults filled in.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// User resolves whose habits and completions a command works on.
func (c *Context) User(settings models.Settings) (string, error) {
	if c.UserID != "" {
		return c.UserID, nil
	}
	if settings.UserID == "" {
		return "", fmt.Errorf("no user configured; run 'kaizen init' or pass --user")
	}
	return settings.UserID, nil
}

// Snapshot is everything the read-only views need for one user.
type Snapshot struct {
	Settings    models.Settings
	UserID      string
	Today       time.Time
	Habits      []models.Habit
	Completions []models.Completion
}

// LoadSnapshot reads the user's live habits and their completions over the
// trailing window of days ending today. Habits and completions are fetched
// concurrently.
func (c *Context) LoadSnapshot(days int) (Snapshot, error) {
	settings, err := c.Settings()
	if err != nil {
		return Snapshot{}, err
	}
	userID, err := c.User(settings)
	if err != nil {
		return Snapshot{}, err
	}
	today, err := utils.TodayFromSettings(settings)
	if err != nil {
		return Snapshot{}, err
	}
	if days < 1 {
		days = 1
	}
	// one extra week so weekly progress for the oldest day is complete
	start := utils.FormatDate(utils.AddDays(today, -(days - 1 + 7)))
	end := utils.FormatDate(today)

	snap := Snapshot{Settings: settings, UserID: userID, Today: today}

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		habits, err := c.Store.GetAllHabits(userID, false, false)
		if err != nil {
			return fmt.Errorf("failed to load habits: %w", err)
		}
		snap.Habits = habits
		return nil
	})
	g.Go(func() error {
		completions, err := c.Store.GetCompletionsForUser(userID, start, end)
		if err != nil {
			return fmt.Errorf("failed to load completions: %w", err)
		}
		snap.Completions = completions
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	logger.Debug("snapshot loaded", "user", userID, "habits", len(snap.Habits), "completions", len(snap.Completions))
	return snap, nil
}

// FindHabit looks up one of the user's habits by name.
func (c *Context) FindHabit(userID, name string) (models.Habit, error) {
	habit, err := c.Store.GetHabitByName(userID, name)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %q: %w", name, err)
	}
	return habit, nil
}

// CheckHabit validates a habit about to be stored and rejects names already
// used by another of the user's habits, compared case-insensitively.
func (c *Context) CheckHabit(habit models.Habit) error {
	if err := validation.New().ValidateHabit(habit).Err(); err != nil {
		return kerrors.Usagef("%v", err)
	}
	others, err := c.Store.GetAllHabits(habit.UserID, true, false)
	if err != nil {
		return err
	}
	for _, h := range others {
		if h.ID != habit.ID && strings.EqualFold(h.Name, habit.Name) {
			return kerrors.Usagef("habit with name %q already exists", h.Name)
		}
	}
	return nil
}

// SQLitePath returns the database file when the store is SQLite.
func (c *Context) SQLitePath() (string, bool) {
	if s, ok := c.Store.(*sqlite.Store); ok {
		return s.GetConfigPath(), true
	}
	return "", false
}

// PerformAutomaticBackup snapshots a SQLite database. Failures are logged
// and otherwise ignored.
func (c *Context) PerformAutomaticBackup() {
	path, ok := c.SQLitePath()
	if !ok {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts a weekday name, its three-letter abbreviation or a
// number 0 (Sunday) .. 6 (Saturday).
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, kerrors.Usagef("invalid weekday: %q", s)
}

// ParseWeekdays parses a comma-separated list of weekdays. Duplicates are
// dropped and the result is sorted Sunday first.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		wd, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

// ParseRecurrence builds a rule from command line flags.
func ParseRecurrence(kind, days string, target int, weekStart string) (models.Recurrence, error) {
	switch strings.ReplaceAll(strings.ToLower(kind), "-", "_") {
	case "", string(models.RecurrenceDaily):
		return models.Daily{}, nil
	case string(models.RecurrenceSpecificDays):
		wds, err := ParseWeekdays(days)
		if err != nil {
			return nil, err
		}
		if len(wds) == 0 {
			return nil, kerrors.Usagef("--days is required for specific-days habits")
		}
		return models.SpecificDays{Days: wds}, nil
	case string(models.RecurrenceWeeklyTarget):
		wsd := time.Sunday
		if weekStart != "" {
			wd, err := ParseWeekday(weekStart)
			if err != nil {
				return nil, err
			}
			wsd = wd
		}
		return models.WeeklyTarget{Target: target, WeekStartDay: wsd}, nil
	default:
		return nil, kerrors.Usagef("unknown recurrence %q (want daily, specific-days or weekly-target)", kind)
	}
}

// FormatRecurrence renders a rule for display.
func FormatRecurrence(rule models.Recurrence) string {
	switch r := rule.(type) {
	case nil, models.Daily:
		return "daily"
	case models.SpecificDays:
		if len(r.Days) == 0 {
			return "never"
		}
		names := make([]string, len(r.Days))
		for i, wd := range r.Days {
			names[i] = wd.String()[:3]
		}
		return "on " + strings.Join(names, ",")
	case models.WeeklyTarget:
		return fmt.Sprintf("%dx per week (from %s)", r.Target, r.WeekStartDay.String()[:3])
	default:
		return "unknown"
	}
}

// Day parses a YYYY-MM-DD flag in the configured timezone. An empty value
// means today.
func (c *Context) Day(settings models.Settings, value string) (time.Time, error) {
	if value == "" {
		return utils.TodayFromSettings(settings)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	day, err := utils.ParseDateInLocation(value, loc)
	if err != nil {
		return time.Time{}, kerrors.Usagef("invalid date %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}
