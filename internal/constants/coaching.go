package constants

// Coaching thresholds used by the habit analyzer. Rates are percentages of
// expected occurrences completed over the scoring period.
const (
	CoachLowRateThreshold  = 50  // below this the habit is considered overcommitted
	CoachHighRateThreshold = 100 // at or above this the habit can be stretched
	CoachMinActiveDays     = 7   // habits younger than this are not judged
	CoachArchiveMinDays    = 14  // minimum active days before suggesting archival
	CoachMinSpecificDays   = 1
	CoachReductionFactor   = 0.75 // applied to the current target/day count when reducing
)

func init() {
	if CoachReductionFactor <= 0 || CoachReductionFactor >= 1 {
		panic("CoachReductionFactor must be between 0 and 1")
	}
}
