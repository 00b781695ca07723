package constants

// Fallbacks applied when a recurrence config is missing or malformed.
// Habits may be saved with a partially populated config, so these are
// substituted instead of failing.
const (
	FallbackDaysPerWeek  = 7
	FallbackWeeklyTarget = 3
	FallbackWeekStartDay = 0

	MinWeeklyTarget = 1
	MaxWeeklyTarget = 7
)

// Streak milestones, in ascending order.
var StreakMilestones = []int{3, 7, 14, 30, 60, 100, 365}
