package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres/repository"
)

type SettingsService struct {
	repository SettingsRepository
}

func NewSettingsService(repository SettingsRepository) *SettingsService {
	return &SettingsService{repository: repository}
}

func (s *SettingsService) GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	settings, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			settings = entities.NewUserSettings(userID)
			if err := s.repository.Save(ctx, settings); err != nil {
				return nil, err
			}
			return settings, nil
		}
		return nil, err
	}

	return settings, nil
}

func (s *SettingsService) update(ctx context.Context, userID int64, fn func(*entities.UserSettings) error) (*entities.UserSettings, error) {
	settings, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(settings); err != nil {
		return nil, err
	}
	settings.UpdatedAt = time.Now()

	if err := s.repository.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// SetPrimaryExam makes examID the exam used for daily drills.
func (s *SettingsService) SetPrimaryExam(ctx context.Context, userID int64, examID string) (*entities.UserSettings, error) {
	return s.update(ctx, userID, func(st *entities.UserSettings) error {
		if examID == "" {
			return fmt.Errorf("%w: empty exam", entities.ErrValidation)
		}
		st.SetPrimaryExam(examID)
		return nil
	})
}

func (s *SettingsService) SetFocusDuration(ctx context.Context, userID int64, minutes int) (*entities.UserSettings, error) {
	return s.update(ctx, userID, func(st *entities.UserSettings) error {
		if !slices.Contains(entities.FocusDurations, minutes) {
			return fmt.Errorf("%w: focus duration %d", entities.ErrValidation, minutes)
		}
		st.Focus.DurationMinutes = minutes
		return nil
	})
}

func (s *SettingsService) SetQuestionCount(ctx context.Context, userID int64, count int) (*entities.UserSettings, error) {
	return s.update(ctx, userID, func(st *entities.UserSettings) error {
		if !slices.Contains(entities.PracticeCounts, count) {
			return fmt.Errorf("%w: question count %d", entities.ErrValidation, count)
		}
		st.QuestionCount = count
		return nil
	})
}

func (s *SettingsService) ToggleReminders(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	return s.update(ctx, userID, func(st *entities.UserSettings) error {
		st.Reminders.Enabled = !st.Reminders.Enabled
		return nil
	})
}

// SetReminderHour sets the UTC hour of the daily reminder and enables it.
func (s *SettingsService) SetReminderHour(ctx context.Context, userID int64, hour int) (*entities.UserSettings, error) {
	return s.update(ctx, userID, func(st *entities.UserSettings) error {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("%w: hour %d", entities.ErrValidation, hour)
		}
		st.Reminders.HourUTC = hour
		st.Reminders.Enabled = true
		return nil
	})
}
