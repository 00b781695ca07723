package models

// Settings represents application-wide settings
type Settings struct {
	UserID          string `json:"user_id"`           // the local user completions are recorded for
	Timezone        string `json:"timezone"`          // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	WeekStartDay    int    `json:"week_start_day"`    // 0=Sunday .. 6=Saturday, used for weekly views
	ScorePeriodDays int    `json:"score_period_days"` // trailing window for category scores
	NarratorBaseURL string `json:"narrator_base_url"` // OpenAI-compatible endpoint for score narratives
	NarratorModel   string `json:"narrator_model"`    // model used for score narratives
}
