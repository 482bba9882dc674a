package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SettingsSchemaVersion is the version written by EncodeSettings.
const SettingsSchemaVersion = 3

var ErrUnknownSettingsVersion = errors.New("unknown settings schema version")

// Focus durations offered in the settings menu, in minutes.
var FocusDurations = []int{25, 50, 60, 90}

// Question counts offered for generated practice tests.
var PracticeCounts = []int{5, 10, 20, 30}

// UserSettings stores user preferences that outlive a quiz session.
type UserSettings struct {
	UserID        int64         `json:"-"`
	SchemaVersion int           `json:"schemaVersion"`
	Exams         []string      `json:"exams"` // target exams, first is primary
	Focus         FocusConfig   `json:"focus"`
	QuestionCount int           `json:"questionCount"` // size of generated practice tests
	Reminders     DailyReminder `json:"reminders"`
	UpdatedAt     time.Time     `json:"-"`
}

// FocusConfig describes a focus-mode session.
type FocusConfig struct {
	DurationMinutes int      `json:"duration"`
	Features        []string `json:"features"`
}

// DailyReminder configures the daily drill reminder.
type DailyReminder struct {
	Enabled bool `json:"enabled"`
	HourUTC int  `json:"hour"`
}

// NewUserSettings creates settings with default values.
func NewUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:        userID,
		SchemaVersion: SettingsSchemaVersion,
		Focus:         FocusConfig{DurationMinutes: 25, Features: []string{"quiz"}},
		QuestionCount: 10,
		Reminders:     DailyReminder{Enabled: false, HourUTC: 8},
		UpdatedAt:     time.Now(),
	}
}

// PrimaryExam returns the exam used for daily drills, or "general".
func (s *UserSettings) PrimaryExam() string {
	if len(s.Exams) == 0 || s.Exams[0] == "" {
		return "general"
	}
	return s.Exams[0]
}

// SetPrimaryExam moves examID to the front of the target exams.
func (s *UserSettings) SetPrimaryExam(examID string) {
	exams := []string{examID}
	for _, e := range s.Exams {
		if e != examID {
			exams = append(exams, e)
		}
	}
	s.Exams = exams
}

// settingsMigration upgrades a raw document by one version.
type settingsMigration func(doc map[string]any) error

// settingsMigrations maps a version to the step that lifts it to version+1.
var settingsMigrations = map[int]settingsMigration{
	// v1 kept a single "exam" and a flat "focusDuration".
	1: func(doc map[string]any) error {
		var exams []any
		if exam, ok := doc["exam"].(string); ok && exam != "" {
			exams = append(exams, exam)
		}
		doc["exams"] = exams
		delete(doc, "exam")

		duration := float64(25)
		if d, ok := doc["focusDuration"].(float64); ok && d > 0 {
			duration = d
		}
		doc["focus"] = map[string]any{"duration": duration, "features": []any{"quiz"}}
		delete(doc, "focusDuration")

		if _, ok := doc["questionCount"]; !ok {
			doc["questionCount"] = float64(10)
		}
		return nil
	},
	// v2 had no reminders section.
	2: func(doc map[string]any) error {
		if _, ok := doc["reminders"]; !ok {
			doc["reminders"] = map[string]any{"enabled": false, "hour": float64(8)}
		}
		return nil
	},
}

// DecodeSettings reads a stored settings document of the given version,
// applying every migration up to SettingsSchemaVersion.
func DecodeSettings(userID int64, version int, raw []byte) (*UserSettings, error) {
	if version < 1 || version > SettingsSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSettingsVersion, version)
	}

	doc := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode settings v%d: %w", version, err)
		}
	}

	for v := version; v < SettingsSchemaVersion; v++ {
		migrate, ok := settingsMigrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: no migration from %d", ErrUnknownSettingsVersion, v)
		}
		if err := migrate(doc); err != nil {
			return nil, fmt.Errorf("migrate settings v%d: %w", v, err)
		}
	}
	doc["schemaVersion"] = SettingsSchemaVersion

	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode migrated settings: %w", err)
	}

	settings := NewUserSettings(userID)
	if err := json.Unmarshal(buf, settings); err != nil {
		return nil, fmt.Errorf("decode migrated settings: %w", err)
	}
	settings.UserID = userID

	return settings, nil
}

// EncodeSettings serializes settings at the current schema version.
func EncodeSettings(s *UserSettings) ([]byte, error) {
	s.SchemaVersion = SettingsSchemaVersion
	return json.Marshal(s)
}
