package sqldb

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kaizenhq/kaizen/internal/models"
)

const completionColumns = "id, habit_id, user_id, day, created_at"

func scanCompletion(row scanner) (models.Completion, error) {
	var c models.Completion
	var createdAt string
	if err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Day, &createdAt); err != nil {
		return models.Completion{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return models.Completion{}, fmt.Errorf("completion %s: %w", c.ID, err)
	}
	c.CreatedAt = t
	return c, nil
}

func (q *Queries) ToggleCompletion(habitID, userID, day string) (bool, error) {
	tx, err := q.db.Begin()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(Rebind(q.dialect,
		`DELETE FROM completions WHERE habit_id = ? AND user_id = ? AND day = ?`),
		habitID, userID, day)
	if err != nil {
		return false, fmt.Errorf("failed to clear completion: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	marked := removed == 0
	if marked {
		_, err = tx.Exec(Rebind(q.dialect, `
			INSERT INTO completions (`+completionColumns+`)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (habit_id, user_id, day) DO NOTHING`),
			uuid.New().String(), habitID, userID, day, q.timestamp())
		if err != nil {
			return false, fmt.Errorf("failed to record completion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return marked, nil
}

func (q *Queries) GetCompletion(habitID, userID, day string) (models.Completion, error) {
	row := q.queryRow(`
		SELECT `+completionColumns+` FROM completions
		WHERE habit_id = ? AND user_id = ? AND day = ?`, habitID, userID, day)
	c, err := scanCompletion(row)
	if err != nil {
		return models.Completion{}, notFound(err, "completion of %s on %s", habitID, day)
	}
	return c, nil
}

func (q *Queries) GetCompletionsForUser(userID, startDay, endDay string) ([]models.Completion, error) {
	return q.listCompletions(`
		SELECT `+completionColumns+` FROM completions
		WHERE user_id = ? AND day >= ? AND day <= ?
		ORDER BY day, habit_id`, userID, startDay, endDay)
}

func (q *Queries) GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.Completion, error) {
	return q.listCompletions(`
		SELECT `+completionColumns+` FROM completions
		WHERE habit_id = ? AND day >= ? AND day <= ?
		ORDER BY day, user_id`, habitID, startDay, endDay)
}

func (q *Queries) listCompletions(query string, args ...interface{}) ([]models.Completion, error) {
	rows, err := q.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
