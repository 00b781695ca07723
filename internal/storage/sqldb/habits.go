package sqldb

import (
	"database/sql"
	"fmt"

	"github.com/kaizenhq/kaizen/internal/logger"
	"github.com/kaizenhq/kaizen/internal/models"
)

const habitColumns = `id, user_id, name, category, recurrence_type, recurrence_config,
	start_date, end_date, created_at, archived_at, deleted_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var category, recurrenceType, recurrenceConfig, createdAt string
	var archivedAt, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &category, &recurrenceType, &recurrenceConfig,
		&h.StartDate, &h.EndDate, &createdAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Category = models.Category(category)
	h.Recurrence = models.DecodeRecurrence(models.RecurrenceType(recurrenceType), []byte(recurrenceConfig))
	if h.Recurrence.Type() != models.RecurrenceType(recurrenceType) {
		logger.Warn("unknown recurrence type, treating habit as daily", "habit_id", h.ID, "type", recurrenceType)
	}

	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime("archived_at", archivedAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}

	return h, nil
}

func (q *Queries) AddHabit(habit models.Habit) error {
	typ, config, err := models.EncodeRecurrence(habit.Rule())
	if err != nil {
		return err
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = q.now()
	}

	_, err = q.exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.UserID, habit.Name, string(habit.Category), string(typ), string(config),
		habit.StartDate, habit.EndDate, formatTime(habit.CreatedAt),
		nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to add habit %q: %w", habit.Name, err)
	}
	return nil
}

func (q *Queries) GetHabit(id string) (models.Habit, error) {
	row := q.queryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND deleted_at IS NULL`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit %s", id)
	}
	return h, nil
}

func (q *Queries) GetHabitByName(userID, name string) (models.Habit, error) {
	row := q.queryRow(`
		SELECT `+habitColumns+` FROM habits
		WHERE user_id = ? AND name = ? AND deleted_at IS NULL`, userID, name)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit %q", name)
	}
	return h, nil
}

func (q *Queries) GetAllHabits(userID string, includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	var args []interface{}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at, name"

	rows, err := q.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// UpdateHabit rewrites the editable fields of a live habit.
func (q *Queries) UpdateHabit(habit models.Habit) error {
	typ, config, err := models.EncodeRecurrence(habit.Rule())
	if err != nil {
		return err
	}

	return q.execOne("habit "+habit.ID, `
		UPDATE habits SET
			name = ?, category = ?, recurrence_type = ?, recurrence_config = ?,
			start_date = ?, end_date = ?, archived_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		habit.Name, string(habit.Category), string(typ), string(config),
		habit.StartDate, habit.EndDate, nullTime(habit.ArchivedAt), habit.ID)
}

func (q *Queries) ArchiveHabit(id string) error {
	return q.execOne("habit "+id+" (live, unarchived)", `
		UPDATE habits SET archived_at = ?
		WHERE id = ? AND deleted_at IS NULL AND archived_at IS NULL`,
		q.timestamp(), id)
}

func (q *Queries) UnarchiveHabit(id string) error {
	return q.execOne("habit "+id+" (archived)", `
		UPDATE habits SET archived_at = NULL
		WHERE id = ? AND deleted_at IS NULL AND archived_at IS NOT NULL`, id)
}

// DeleteHabit soft-deletes a habit. Its completions are kept so that a
// restore brings its history back.
func (q *Queries) DeleteHabit(id string) error {
	return q.execOne("habit "+id+" (live)", `
		UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		q.timestamp(), id)
}

func (q *Queries) RestoreHabit(id string) error {
	return q.execOne("habit "+id+" (deleted)", `
		UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
}
