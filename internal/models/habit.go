package models

import (
	"strings"
	"time"
)

// Category is one of the fixed life areas habits are grouped under.
type Category string

const (
	CategoryHealth  Category = "Health"
	CategoryCareer  Category = "Career"
	CategorySpirit  Category = "Spirit"
	CategoryMindset Category = "Mindset"
	CategoryJoy     Category = "Joy"
)

// Categories is the scoring taxonomy. Its order is significant: category
// scores are produced in this order before ranking.
var Categories = []Category{
	CategoryHealth,
	CategoryCareer,
	CategorySpirit,
	CategoryMindset,
	CategoryJoy,
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Habit represents a recurring practice to track
type Habit struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	Recurrence Recurrence `json:"-"`
	StartDate  string     `json:"start_date"`         // YYYY-MM-DD format, inclusive
	EndDate    string     `json:"end_date,omitempty"` // YYYY-MM-DD format, inclusive; empty means ongoing
	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Completion records that a user completed a habit on a given day.
// At most one exists per (HabitID, UserID, Day).
type Completion struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the identity tuple used for deduplication.
func (c Completion) Key() CompletionKey {
	return CompletionKey{HabitID: c.HabitID, UserID: c.UserID, Day: c.Day}
}

// CompletionKey is the (habit, user, day) identity of a completion.
type CompletionKey struct {
	HabitID string
	UserID  string
	Day     string
}
