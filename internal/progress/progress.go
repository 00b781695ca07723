// Package progress derives counts, scores, streaks and rankings from
// snapshots of habits and completions. Every function is pure: callers
// fetch the inputs and inject the current date.
package progress

import "github.com/kaizenhq/kaizen/internal/models"

// dedupe drops repeated (habit, user, day) completions, keeping the first.
func dedupe(completions []models.Completion) []models.Completion {
	seen := make(map[models.CompletionKey]bool, len(completions))
	out := make([]models.Completion, 0, len(completions))
	for _, c := range completions {
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// completedDays returns the set of days on which habitID was completed.
// Completions by different users on the same day collapse into one day.
func completedDays(completions []models.Completion, habitID string) map[string]bool {
	days := make(map[string]bool)
	for _, c := range completions {
		if c.HabitID == habitID {
			days[c.Day] = true
		}
	}
	return days
}
