package telegram

import (
	"context"
	"time"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/storage"
)

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64) error
	Get(ctx context.Context, userID int64) (*entities.User, error)
	LoginEmail(ctx context.Context, userID int64, email, password string) (*entities.User, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, userID int64, phone, otp string) (*entities.User, error)
	Logout(ctx context.Context, userID int64) error
	UpdateProfile(ctx context.Context, userID int64, name, examID string) (*entities.User, error)
}

type QuizService interface {
	StartTest(ctx context.Context, chatID int64, testID string) (*entities.Session, error)
	StartDaily(ctx context.Context, chatID int64, examID string) (*entities.Session, error)
	StartPractice(ctx context.Context, chatID int64, examID, topic string, count int) (*entities.Session, error)
	Current(chatID int64) (*entities.Session, bool)
	StartFocus(ctx context.Context, chatID int64, examID string, limit time.Duration) (*entities.Session, error)
	Select(ctx context.Context, chatID int64, accountID string, optionIndex int) (entities.Snapshot, error)
	Advance(ctx context.Context, chatID int64, accountID string) (entities.Snapshot, error)
	Expire(ctx context.Context, chatID int64, accountID string) (entities.Snapshot, bool, error)
	Retry(ctx context.Context, chatID int64, accountID string) (entities.Snapshot, error)
	Cancel(chatID int64) error
	Dismiss(chatID int64)
}

type SettingsService interface {
	GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error)
	SetPrimaryExam(ctx context.Context, userID int64, examID string) (*entities.UserSettings, error)
	SetFocusDuration(ctx context.Context, userID int64, minutes int) (*entities.UserSettings, error)
	SetQuestionCount(ctx context.Context, userID int64, count int) (*entities.UserSettings, error)
	ToggleReminders(ctx context.Context, userID int64) (*entities.UserSettings, error)
	SetReminderHour(ctx context.Context, userID int64, hour int) (*entities.UserSettings, error)
}

type CatalogService interface {
	Categories(ctx context.Context) ([]entities.Category, error)
	Exams(ctx context.Context, category string) ([]entities.Exam, error)
	Exam(ctx context.Context, examID string) (*entities.Exam, error)
	Dashboard(ctx context.Context, accountID string) (*entities.Dashboard, error)
}

type ResetService interface {
	ResetUser(ctx context.Context, userID int64) error
}

// QuizMessages tracks the message showing a chat's quiz and the timer
// redrawing it.
type QuizMessages interface {
	SetMessage(chatID int64, messageID int)
	Message(chatID int64) (int, bool)
	SetTimer(chatID int64, stop context.CancelFunc) bool
	StopTimer(chatID int64)
}

// ProfileDrafts keeps the name entered with /profile until an exam is picked.
type ProfileDrafts interface {
	Put(chatID int64, name string)
	Take(chatID int64) (string, bool)
}

// ReminderMessages remembers the last reminder sent to a chat.
type ReminderMessages interface {
	UpsertAndGetPrev(chatID int64, messageID int) (storage.ReminderMessage, bool)
	Delete(chatID int64)
}
