package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingName        ConflictType = "missing_name"
	ConflictDuplicateName      ConflictType = "duplicate_name"
	ConflictUnknownCategory    ConflictType = "unknown_category"
	ConflictInvalidTarget      ConflictType = "invalid_target"
	ConflictInvalidWeekStart   ConflictType = "invalid_week_start"
	ConflictInvalidWeekday     ConflictType = "invalid_weekday"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictInvertedWindow     ConflictType = "inverted_window"
	ConflictInvalidTimezone    ConflictType = "invalid_timezone"
	ConflictInvalidScorePeriod ConflictType = "invalid_score_period"
	ConflictMissingHabit       ConflictType = "missing_habit"
)

// Conflict is a single problem found in a habit, challenge or settings
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // names of the records involved
	IDs         []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Err folds the conflicts into a single error, or nil when there are none.
func (vr ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	msgs := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		msgs = append(msgs, c.Description)
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// FormatReport returns a human-readable report of all conflicts
func (vr ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(c Conflict) {
	vr.Conflicts = append(vr.Conflicts, c)
}

// Validator checks habit definitions before they are saved
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabit checks a single habit definition. An empty specific-day
// set is allowed; such a habit is simply never scheduled.
func (v *Validator) ValidateHabit(h models.Habit) ValidationResult {
	result := ValidationResult{}
	label := h.Name
	if label == "" {
		label = h.ID
	}

	if strings.TrimSpace(h.Name) == "" {
		result.add(Conflict{
			Type:        ConflictMissingName,
			Description: fmt.Sprintf("Habit %s has no name", h.ID),
			IDs:         []string{h.ID},
		})
	}

	if c, ok := models.ParseCategory(string(h.Category)); !ok || c != h.Category {
		result.add(Conflict{
			Type:        ConflictUnknownCategory,
			Description: fmt.Sprintf("Habit %q has unknown category %q", label, h.Category),
			Items:       []string{label},
			IDs:         []string{h.ID},
		})
	}

	switch rule := h.Rule().(type) {
	case models.SpecificDays:
		for _, d := range rule.Days {
			if d < time.Sunday || d > time.Saturday {
				result.add(Conflict{
					Type:        ConflictInvalidWeekday,
					Description: fmt.Sprintf("Habit %q has invalid weekday %d", label, int(d)),
					Items:       []string{label},
					IDs:         []string{h.ID},
				})
			}
		}
	case models.WeeklyTarget:
		if rule.Target < constants.MinWeeklyTarget || rule.Target > constants.MaxWeeklyTarget {
			result.add(Conflict{
				Type: ConflictInvalidTarget,
				Description: fmt.Sprintf("Habit %q has weekly target %d, must be between %d and %d",
					label, rule.Target, constants.MinWeeklyTarget, constants.MaxWeeklyTarget),
				Items: []string{label},
				IDs:   []string{h.ID},
			})
		}
		if err := utils.ValidateWeekStartDay(rule.WeekStartDay); err != nil {
			result.add(Conflict{
				Type:        ConflictInvalidWeekStart,
				Description: fmt.Sprintf("Habit %q: %v", label, err),
				Items:       []string{label},
				IDs:         []string{h.ID},
			})
		}
	}

	v.checkWindow(&result, label, h.ID, h.StartDate, h.EndDate)
	return result
}

// ValidateHabits checks every live habit and flags names reused by the
// same user. Deleted habits are ignored.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{}

	type owner struct{ user, name string }
	byName := make(map[owner][]string)
	var keys []owner

	for _, h := range habits {
		if h.DeletedAt != nil {
			continue
		}
		result.Conflicts = append(result.Conflicts, v.ValidateHabit(h).Conflicts...)

		if h.Name == "" {
			continue
		}
		k := owner{h.UserID, strings.ToLower(h.Name)}
		if _, seen := byName[k]; !seen {
			keys = append(keys, k)
		}
		byName[k] = append(byName[k], h.ID)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].user != keys[j].user {
			return keys[i].user < keys[j].user
		}
		return keys[i].name < keys[j].name
	})
	for _, k := range keys {
		if ids := byName[k]; len(ids) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateName,
				Description: fmt.Sprintf("Duplicate habit name %q (IDs: %v)", k.name, ids),
				Items:       []string{k.name},
				IDs:         ids,
			})
		}
	}

	return result
}

// ValidateChallenge checks a challenge's name, habit reference and window.
func (v *Validator) ValidateChallenge(c models.Challenge) ValidationResult {
	result := ValidationResult{}

	if strings.TrimSpace(c.Name) == "" {
		result.add(Conflict{
			Type:        ConflictMissingName,
			Description: fmt.Sprintf("Challenge %s has no name", c.ID),
			IDs:         []string{c.ID},
		})
	}
	if c.HabitID == "" {
		result.add(Conflict{
			Type:        ConflictMissingHabit,
			Description: fmt.Sprintf("Challenge %q is not linked to a habit", c.Name),
			Items:       []string{c.Name},
			IDs:         []string{c.ID},
		})
	}
	if c.StartDay == "" || c.EndDay == "" {
		result.add(Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("Challenge %q needs both a start and an end day", c.Name),
			Items:       []string{c.Name},
			IDs:         []string{c.ID},
		})
		return result
	}

	v.checkWindow(&result, c.Name, c.ID, c.StartDay, c.EndDay)
	return result
}

// ValidateSettings checks user settings loaded from storage.
func (v *Validator) ValidateSettings(s models.Settings) ValidationResult {
	result := ValidationResult{}

	if !utils.ValidateTimezone(s.Timezone) {
		result.add(Conflict{
			Type:        ConflictInvalidTimezone,
			Description: fmt.Sprintf("Invalid timezone %q", s.Timezone),
			Items:       []string{constants.SettingTimezone},
		})
	}
	if err := utils.ValidateWeekStartDay(time.Weekday(s.WeekStartDay)); err != nil {
		result.add(Conflict{
			Type:        ConflictInvalidWeekStart,
			Description: fmt.Sprintf("Setting %s: %v", constants.SettingWeekStartDay, err),
			Items:       []string{constants.SettingWeekStartDay},
		})
	}
	if s.ScorePeriodDays <= 0 {
		result.add(Conflict{
			Type:        ConflictInvalidScorePeriod,
			Description: fmt.Sprintf("Setting %s must be positive, got %d", constants.SettingScorePeriodDays, s.ScorePeriodDays),
			Items:       []string{constants.SettingScorePeriodDays},
		})
	}

	return result
}

func (v *Validator) checkWindow(result *ValidationResult, label, id, start, end string) {
	startOK := start == "" || utils.ValidateDateFormat(start)
	endOK := end == "" || utils.ValidateDateFormat(end)

	if !startOK {
		result.add(Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("%q has invalid start date %q (want YYYY-MM-DD)", label, start),
			Items:       []string{label},
			IDs:         []string{id},
		})
	}
	if !endOK {
		result.add(Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("%q has invalid end date %q (want YYYY-MM-DD)", label, end),
			Items:       []string{label},
			IDs:         []string{id},
		})
	}
	if startOK && endOK && start != "" && end != "" && start > end {
		result.add(Conflict{
			Type:        ConflictInvertedWindow,
			Description: fmt.Sprintf("%q starts on %s, after it ends on %s", label, start, end),
			Items:       []string{label},
			IDs:         []string{id},
		})
	}
}
