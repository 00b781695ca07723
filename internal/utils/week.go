package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
)

// ErrInvalidWeekStartDay is returned when a week start day falls outside
// Sunday (0) .. Saturday (6).
var ErrInvalidWeekStartDay = errors.New("week start day must be between 0 (Sunday) and 6 (Saturday)")

// ValidateWeekStartDay rejects week start days outside 0..6.
func ValidateWeekStartDay(weekStartDay time.Weekday) error {
	if weekStartDay < time.Sunday || weekStartDay > time.Saturday {
		return fmt.Errorf("%w: got %d", ErrInvalidWeekStartDay, int(weekStartDay))
	}
	return nil
}

// WeekStart returns midnight of the first day of the 7-day window that
// contains date, where windows begin on weekStartDay. Days that fall before
// weekStartDay in the natural Sunday-first order belong to the window that
// started the previous calendar week.
func WeekStart(date time.Time, weekStartDay time.Weekday) (time.Time, error) {
	if err := ValidateWeekStartDay(weekStartDay); err != nil {
		return time.Time{}, err
	}

	day := int(date.Weekday())
	start := int(weekStartDay)
	if day < start {
		day += constants.DaysPerWeek
	}
	diff := day - start

	return AddDays(date, -diff), nil
}

// WeekEnd returns the last instant of the window containing date.
func WeekEnd(date time.Time, weekStartDay time.Weekday) (time.Time, error) {
	start, err := WeekStart(date, weekStartDay)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, constants.DaysPerWeek).Add(-time.Nanosecond), nil
}

// WeekBounds returns the window containing date as inclusive YYYY-MM-DD
// strings, suitable for comparing against completion days.
func WeekBounds(date time.Time, weekStartDay time.Weekday) (string, string, error) {
	start, err := WeekStart(date, weekStartDay)
	if err != nil {
		return "", "", err
	}
	end := start.AddDate(0, 0, constants.DaysPerWeek-1)
	return FormatDate(start), FormatDate(end), nil
}
