package sqldb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/storage"
)

func (q *Queries) GetSettings() (models.Settings, error) {
	rows, err := q.query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings: %w", storage.ErrNotFound)
	}
	return models.MapToSettings(data)
}

func (q *Queries) SaveSettings(settings models.Settings) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(Rebind(q.dialect, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// EnsureDefaultSettings fills in any missing settings and assigns the local
// user an ID on first run.
func (q *Queries) EnsureDefaultSettings() error {
	settings, err := q.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	before := settings
	models.ApplyDefaultSettings(&settings)
	if settings.UserID == "" {
		settings.UserID = uuid.New().String()
	}
	if err == nil && settings == before {
		return nil
	}

	if err := q.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	return nil
}
