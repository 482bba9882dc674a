package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres"
)

var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRepository stores user settings as a versioned JSON document.
// Documents written by older releases are migrated when read.
type SettingsRepository struct {
	db postgres.DBTX
}

// NewSettingsRepository creates a new SettingsRepository with the provided database pool.
func NewSettingsRepository(db postgres.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetByUserID retrieves settings for a user.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	query := `
		SELECT schema_version, document, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var (
		version int
		doc     []byte
		updated time.Time
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(&version, &doc, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	settings, err := entities.DecodeSettings(userID, version, doc)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	settings.UpdatedAt = updated

	return settings, nil
}

// Save writes settings at the current schema version. Reminder fields are
// also kept in columns so due reminders can be queried.
func (r *SettingsRepository) Save(ctx context.Context, settings *entities.UserSettings) error {
	doc, err := entities.EncodeSettings(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := `
		INSERT INTO user_settings (
			user_id, schema_version, document, reminders_enabled,
			reminder_hour, primary_exam, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			document = EXCLUDED.document,
			reminders_enabled = EXCLUDED.reminders_enabled,
			reminder_hour = EXCLUDED.reminder_hour,
			primary_exam = EXCLUDED.primary_exam,
			updated_at = NOW()
	`

	_, err = r.db.Exec(ctx, query,
		settings.UserID,
		settings.SchemaVersion,
		doc,
		settings.Reminders.Enabled,
		settings.Reminders.HourUTC,
		settings.PrimaryExam(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}
