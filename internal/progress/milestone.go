package progress

import (
	"fmt"

	"github.com/kaizenhq/kaizen/internal/constants"
)

// Milestone is a streak length worth celebrating.
type Milestone struct {
	Threshold int
	Unit      StreakUnit
}

func (m Milestone) String() string {
	return fmt.Sprintf("%d %s in a row", m.Threshold, m.Unit)
}

// NextMilestone returns the highest milestone the streak has reached, if it
// has not been celebrated yet. Lower milestones that were skipped over are
// not celebrated separately, and nothing is returned once the highest
// reached milestone has been recorded.
func NextMilestone(streak Streak, celebrated map[int]bool) (Milestone, bool) {
	for i := len(constants.StreakMilestones) - 1; i >= 0; i-- {
		threshold := constants.StreakMilestones[i]
		if streak.Current < threshold {
			continue
		}
		if celebrated[threshold] {
			return Milestone{}, false
		}
		return Milestone{Threshold: threshold, Unit: streak.Unit}, true
	}
	return Milestone{}, false
}
