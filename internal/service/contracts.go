package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// TestAPI fetches and generates tests.
type TestAPI interface {
	GetTest(ctx context.Context, testID string) (*api.TestRecord, error)
	GetDailyTest(ctx context.Context, examID string) (*api.TestRecord, error)
	GenerateTest(ctx context.Context, req api.GenerateRequest) (string, error)
}

// SubmissionAPI scores finished attempts.
type SubmissionAPI interface {
	SubmitTest(ctx context.Context, payload entities.SubmissionPayload) (*entities.Analysis, error)
}

// CatalogAPI lists exams.
type CatalogAPI interface {
	ListExams(ctx context.Context, category string) ([]entities.Exam, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
	GetExam(ctx context.Context, examID string) (*entities.Exam, error)
}

// AnalyticsAPI reads the analytics dashboard.
type AnalyticsAPI interface {
	GetDashboard(ctx context.Context, accountID string) (*entities.Dashboard, error)
}

// AuthAPI signs users in and completes their profile.
type AuthAPI interface {
	LoginEmail(ctx context.Context, email, password string) (*api.AuthResult, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (*api.AuthResult, error)
	UpdateProfile(ctx context.Context, accountID, name, targetExam string) (*entities.Account, error)
}

type UserRepository interface {
	SaveUser(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, userID int64) (*entities.User, error)
	UpdateCredentials(ctx context.Context, user *entities.User) error
	ClearCredentials(ctx context.Context, userID int64) error
}

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error)
	Save(ctx context.Context, settings *entities.UserSettings) error
}

// ReminderRepository manages reminder delivery state.
type ReminderRepository interface {
	GetDueRemindersBatch(ctx context.Context, now time.Time, limit int, afterID int64) ([]*entities.ReminderWithUser, error)
	MarkAsSent(ctx context.Context, userID int64, sentAt time.Time) error
	Deactivate(ctx context.Context, userID int64) error
}

// ReminderNotifier sends reminder notifications to users.
type ReminderNotifier interface {
	SendReminder(chatID int64, payload entities.ReminderPayload) error
}

// SessionStore keeps the quiz session of each chat.
type SessionStore interface {
	Get(chatID int64) (*entities.Session, bool)
	Put(chatID int64, session *entities.Session)
	Delete(chatID int64)
}

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}
