package sqldb

func (q *Queries) GetCelebratedMilestones(userID, habitID string) (map[int]bool, error) {
	rows, err := q.query(`
		SELECT threshold FROM celebrations WHERE user_id = ? AND habit_id = ?`, userID, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	celebrated := make(map[int]bool)
	for rows.Next() {
		var threshold int
		if err := rows.Scan(&threshold); err != nil {
			return nil, err
		}
		celebrated[threshold] = true
	}
	return celebrated, rows.Err()
}

// RecordMilestone marks a threshold as celebrated. Recording it again is a
// no-op.
func (q *Queries) RecordMilestone(userID, habitID string, threshold int) error {
	_, err := q.exec(`
		INSERT INTO celebrations (user_id, habit_id, threshold, celebrated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, habit_id, threshold) DO NOTHING`,
		userID, habitID, threshold, q.timestamp())
	return err
}
