package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

func TestSettingsService_GetOrCreate(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo)
	ctx := context.Background()

	s, err := svc.GetOrCreate(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if s.QuestionCount != 10 || s.SchemaVersion != entities.SettingsSchemaVersion {
		t.Fatalf("defaults = %+v", s)
	}
	if repo.saves != 1 {
		t.Fatalf("saves = %d, want 1", repo.saves)
	}

	if _, err := svc.GetOrCreate(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if repo.saves != 1 {
		t.Fatalf("existing settings saved again")
	}
}

func TestSettingsService_Updates(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo)
	ctx := context.Background()

	if _, err := svc.SetPrimaryExam(ctx, 1, "ibps"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetFocusDuration(ctx, 1, 50); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetQuestionCount(ctx, 1, 20); err != nil {
		t.Fatal(err)
	}
	s, err := svc.SetReminderHour(ctx, 1, 18)
	if err != nil {
		t.Fatal(err)
	}

	if s.PrimaryExam() != "ibps" || s.Focus.DurationMinutes != 50 || s.QuestionCount != 20 {
		t.Fatalf("settings = %+v", s)
	}
	if !s.Reminders.Enabled || s.Reminders.HourUTC != 18 {
		t.Fatalf("reminders = %+v", s.Reminders)
	}

	s, _ = svc.ToggleReminders(ctx, 1)
	if s.Reminders.Enabled {
		t.Fatal("toggle did not disable reminders")
	}
}

func TestSettingsService_RejectsInvalidValues(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo())
	ctx := context.Background()

	checks := []error{
		func() error { _, err := svc.SetFocusDuration(ctx, 1, 7); return err }(),
		func() error { _, err := svc.SetQuestionCount(ctx, 1, 1000); return err }(),
		func() error { _, err := svc.SetReminderHour(ctx, 1, 24); return err }(),
		func() error { _, err := svc.SetPrimaryExam(ctx, 1, ""); return err }(),
	}
	for i, err := range checks {
		if !errors.Is(err, entities.ErrValidation) {
			t.Errorf("check %d: got %v, want ErrValidation", i, err)
		}
	}
}
