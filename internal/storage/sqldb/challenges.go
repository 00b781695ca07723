package sqldb

import (
	"fmt"

	"github.com/kaizenhq/kaizen/internal/models"
)

const challengeColumns = "id, name, habit_id, owner_id, start_day, end_day, created_at"

func scanChallenge(row scanner) (models.Challenge, error) {
	var c models.Challenge
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.HabitID, &c.OwnerID, &c.StartDay, &c.EndDay, &createdAt); err != nil {
		return models.Challenge{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return models.Challenge{}, fmt.Errorf("challenge %s: %w", c.ID, err)
	}
	c.CreatedAt = t
	return c, nil
}

// AddChallenge stores the challenge and enrolls its owner.
func (q *Queries) AddChallenge(c models.Challenge) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = q.now()
	}

	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(Rebind(q.dialect, `
		INSERT INTO challenges (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Name, c.HabitID, c.OwnerID, c.StartDay, c.EndDay, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add challenge %q: %w", c.Name, err)
	}

	_, err = tx.Exec(Rebind(q.dialect, `
		INSERT INTO challenge_members (challenge_id, user_id, joined_at) VALUES (?, ?, ?)`),
		c.ID, c.OwnerID, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to enroll challenge owner: %w", err)
	}

	return tx.Commit()
}

func (q *Queries) GetChallenge(id string) (models.Challenge, error) {
	c, err := scanChallenge(q.queryRow(`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id))
	if err != nil {
		return models.Challenge{}, notFound(err, "challenge %s", id)
	}
	return c, nil
}

func (q *Queries) GetChallengeByName(name string) (models.Challenge, error) {
	c, err := scanChallenge(q.queryRow(`SELECT `+challengeColumns+` FROM challenges WHERE name = ?`, name))
	if err != nil {
		return models.Challenge{}, notFound(err, "challenge %q", name)
	}
	return c, nil
}

func (q *Queries) GetAllChallenges() ([]models.Challenge, error) {
	rows, err := q.query(`SELECT ` + challengeColumns + ` FROM challenges ORDER BY start_day, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// JoinChallenge enrolls a user. Joining twice is a no-op.
func (q *Queries) JoinChallenge(challengeID, userID string) error {
	_, err := q.exec(`
		INSERT INTO challenge_members (challenge_id, user_id, joined_at) VALUES (?, ?, ?)
		ON CONFLICT (challenge_id, user_id) DO NOTHING`,
		challengeID, userID, q.timestamp())
	if err != nil {
		return fmt.Errorf("failed to join challenge: %w", err)
	}
	return nil
}

func (q *Queries) LeaveChallenge(challengeID, userID string) error {
	return q.execOne("membership of "+userID, `
		DELETE FROM challenge_members WHERE challenge_id = ? AND user_id = ?`,
		challengeID, userID)
}

func (q *Queries) GetChallengeMembers(challengeID string) ([]models.ChallengeMember, error) {
	rows, err := q.query(`
		SELECT challenge_id, user_id, joined_at FROM challenge_members
		WHERE challenge_id = ? ORDER BY joined_at, user_id`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChallengeMember
	for rows.Next() {
		var m models.ChallengeMember
		var joinedAt string
		if err := rows.Scan(&m.ChallengeID, &m.UserID, &joinedAt); err != nil {
			return nil, err
		}
		if m.JoinedAt, err = parseTime("joined_at", joinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
