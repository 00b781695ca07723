package constants

const (
	// General Settings
	SettingUserID          = "user_id"
	SettingTimezone        = "timezone"
	SettingWeekStartDay    = "week_start_day"
	SettingScorePeriodDays = "score_period_days"

	// Narrator Settings
	SettingNarratorBaseURL = "narrator_base_url"
	SettingNarratorModel   = "narrator_model"

	// Default Settings Values
	DefaultTimezone        = "Local" // Use system local timezone by default
	DefaultWeekStartDay    = 0       // Sunday
	DefaultScorePeriodDays = 30
	DefaultNarratorBaseURL = "https://api.openai.com/v1"
	DefaultNarratorModel   = "gpt-4o-mini"
)
