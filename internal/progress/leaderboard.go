package progress

import (
	"sort"

	"github.com/kaizenhq/kaizen/internal/models"
)

// Leaderboard ranks challenge members by how many days they completed
// habitID inside the inclusive [startDay, endDay] range. Members with no
// completions are listed with a zero count. Ties share a rank and are
// ordered by user ID; the next distinct count skips the shared places.
func Leaderboard(members []string, completions []models.Completion, habitID, startDay, endDay string) []models.LeaderboardEntry {
	counts := make(map[string]int, len(members))
	for _, m := range members {
		counts[m] = 0
	}

	for _, c := range dedupe(completions) {
		if c.HabitID != habitID || c.Day < startDay || c.Day > endDay {
			continue
		}
		if _, ok := counts[c.UserID]; ok {
			counts[c.UserID]++
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(counts))
	for userID, count := range counts {
		entries = append(entries, models.LeaderboardEntry{UserID: userID, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		if i > 0 && entries[i].Count == entries[i-1].Count {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}

	return entries
}
