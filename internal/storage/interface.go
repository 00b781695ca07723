package storage

import (
	"errors"

	"github.com/kaizenhq/kaizen/internal/migration"
	"github.com/kaizenhq/kaizen/internal/models"
)

// ErrNotFound is returned (wrapped) when a lookup or targeted update
// matches no row.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Schema
	Migrate() ([]migration.Migration, error)
	SchemaStatus() (migration.Status, error)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(userID, name string) (models.Habit, error)
	// GetAllHabits lists a user's habits, or every user's when userID is empty.
	GetAllHabits(userID string, includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Completions
	// ToggleCompletion creates the (habit, user, day) completion when it is
	// absent and removes it when present, in one transaction. It reports
	// whether the day is marked afterwards.
	ToggleCompletion(habitID, userID, day string) (bool, error)
	GetCompletion(habitID, userID, day string) (models.Completion, error)
	GetCompletionsForUser(userID, startDay, endDay string) ([]models.Completion, error)
	GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.Completion, error)

	// Challenges
	AddChallenge(models.Challenge) error
	GetChallenge(id string) (models.Challenge, error)
	GetChallengeByName(name string) (models.Challenge, error)
	GetAllChallenges() ([]models.Challenge, error)
	JoinChallenge(challengeID, userID string) error
	LeaveChallenge(challengeID, userID string) error
	GetChallengeMembers(challengeID string) ([]models.ChallengeMember, error)

	// Milestones
	GetCelebratedMilestones(userID, habitID string) (map[int]bool, error)
	RecordMilestone(userID, habitID string, threshold int) error

	// Utils
	GetConfigPath() string
}
