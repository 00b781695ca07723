package models

import (
	"fmt"

	"github.com/kaizenhq/kaizen/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingUserID:
			settings.UserID = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingWeekStartDay:
			if _, err := fmt.Sscanf(value, "%d", &settings.WeekStartDay); err != nil {
				return Settings{}, fmt.Errorf("parsing week_start_day: %w", err)
			}
		case constants.SettingScorePeriodDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.ScorePeriodDays); err != nil {
				return Settings{}, fmt.Errorf("parsing score_period_days: %w", err)
			}
		case constants.SettingNarratorBaseURL:
			settings.NarratorBaseURL = value
		case constants.SettingNarratorModel:
			settings.NarratorModel = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingUserID:          settings.UserID,
		constants.SettingTimezone:        settings.Timezone,
		constants.SettingWeekStartDay:    fmt.Sprintf("%d", settings.WeekStartDay),
		constants.SettingScorePeriodDays: fmt.Sprintf("%d", settings.ScorePeriodDays),
		constants.SettingNarratorBaseURL: settings.NarratorBaseURL,
		constants.SettingNarratorModel:   settings.NarratorModel,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// WeekStartDay is left alone because its zero value is the default.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.ScorePeriodDays <= 0 {
		settings.ScorePeriodDays = constants.DefaultScorePeriodDays
	}
	if settings.NarratorBaseURL == "" {
		settings.NarratorBaseURL = constants.DefaultNarratorBaseURL
	}
	if settings.NarratorModel == "" {
		settings.NarratorModel = constants.DefaultNarratorModel
	}
}
