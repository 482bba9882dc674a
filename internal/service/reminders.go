package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/metrics"
)

// ReminderService sends the daily drill reminder in batches.
type ReminderService struct {
	reminderRepo ReminderRepository
	analytics    AnalyticsAPI
	notifier     ReminderNotifier
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          entities.Clock
}

// NewReminderService creates a new reminder service.
func NewReminderService(
	reminderRepo ReminderRepository,
	analytics AnalyticsAPI,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		analytics:    analytics,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReminderService) SetNotifier(notifier ReminderNotifier) {
	s.notifier = notifier
}

// Start runs the hourly schedule until ctx is done.
func (s *ReminderService) Start(ctx context.Context) {
	s.logger.Info("reminder service started")

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc("0 * * * *", func() {
		s.logger.Info("cron triggered: processing daily drill reminders")
		if _, err := s.SendDueReminders(ctx); err != nil {
			s.logger.Error("failed to send reminders", zap.Error(err))
		}
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()
	s.logger.Info("cron scheduler started")

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("reminder service stopped")
}

// SendDueReminders processes all due reminders and returns how many were sent.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	const batchSize = 100
	var lastID int64
	totalSent := 0
	now := s.now().UTC()

	for {
		reminders, err := s.reminderRepo.GetDueRemindersBatch(ctx, now, batchSize, lastID)
		if err != nil {
			return totalSent, fmt.Errorf("get due reminders batch: %w", err)
		}

		if len(reminders) == 0 {
			break
		}

		totalSent += s.processBatch(ctx, reminders, now)

		if len(reminders) < batchSize {
			break
		}

		lastID = reminders[len(reminders)-1].UserID
	}

	s.logger.Info("reminders processed", zap.Int("total_sent", totalSent))

	return totalSent, nil
}

// processBatch processes a batch of reminders concurrently.
func (s *ReminderService) processBatch(ctx context.Context, reminders []*entities.ReminderWithUser, now time.Time) int {
	const maxConcurrent = 10
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	sent := 0

	for _, rwu := range reminders {
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			ok, err := s.processReminder(ctx, rwu, now)
			if err != nil {
				s.logger.Error("failed to process reminder",
					zap.Int64("user_id", rwu.UserID),
					zap.Error(err))
				return
			}
			if ok {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return sent
}

func (s *ReminderService) processReminder(ctx context.Context, rwu *entities.ReminderWithUser, now time.Time) (bool, error) {
	if !rwu.CanSendNow(now) {
		return false, nil
	}

	if s.notifier == nil {
		return false, fmt.Errorf("notifier not initialized")
	}

	payload := entities.ReminderPayload{ExamID: rwu.ExamID}
	if rwu.ExamID == "" {
		payload.ExamID = "general"
	}

	if rwu.AccountID != "" && s.analytics != nil {
		actx := api.ContextWithToken(ctx, rwu.Token)
		if d, err := s.analytics.GetDashboard(actx, rwu.AccountID); err == nil && d != nil {
			payload.QuizzesTaken = d.TotalQuizzes
		} else if err != nil {
			s.logger.Debug("reminder without stats", zap.Int64("user_id", rwu.UserID), zap.Error(err))
		}
	}

	if err := s.notifier.SendReminder(rwu.ChatID, payload); err != nil {
		if errors.Is(err, entities.ErrChatUnavailable) {
			s.logger.Info("chat unavailable, deactivating user", zap.Int64("user_id", rwu.UserID))
			if derr := s.reminderRepo.Deactivate(ctx, rwu.UserID); derr != nil {
				return false, fmt.Errorf("deactivate user: %w", derr)
			}
			return false, nil
		}
		return false, fmt.Errorf("send notification: %w", err)
	}

	if err := s.reminderRepo.MarkAsSent(ctx, rwu.UserID, now); err != nil {
		return false, fmt.Errorf("mark as sent: %w", err)
	}

	s.metrics.ReminderSent()
	s.logger.Info("reminder sent", zap.Int64("user_id", rwu.UserID), zap.String("exam_id", payload.ExamID))

	return true, nil
}
