package models

import "time"

// Challenge is a group commitment to a shared habit over a date range.
// Every member's completions of HabitID inside the range count toward
// the leaderboard.
type Challenge struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HabitID   string    `json:"habit_id"`
	OwnerID   string    `json:"owner_id"`
	StartDay  string    `json:"start_day"` // YYYY-MM-DD format
	EndDay    string    `json:"end_day"`   // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// ChallengeMember is a user who joined a challenge
type ChallengeMember struct {
	ChallengeID string    `json:"challenge_id"`
	UserID      string    `json:"user_id"`
	JoinedAt    time.Time `json:"joined_at"`
}

// LeaderboardEntry is one ranked row of a challenge leaderboard
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}
