package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/metrics"
)

var (
	ErrNoSession         = errors.New("no quiz in progress")
	ErrSessionInProgress = errors.New("another quiz is in progress")
)

// QuizOptions configures QuizService.
type QuizOptions struct {
	TimeLimit    time.Duration // zero disables the deadline
	DefaultCount int
	Now          entities.Clock
}

// QuizService runs one quiz session per chat.
type QuizService struct {
	tests     TestAPI
	loader    *TestLoader
	finalizer *Finalizer
	store     SessionStore
	metrics   *metrics.Metrics
	logger    *zap.Logger

	timeLimit    time.Duration
	defaultCount int
	now          entities.Clock
}

func NewQuizService(
	tests TestAPI,
	loader *TestLoader,
	finalizer *Finalizer,
	store SessionStore,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts QuizOptions,
) *QuizService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = 10
	}

	return &QuizService{
		tests:        tests,
		loader:       loader,
		finalizer:    finalizer,
		store:        store,
		metrics:      m,
		logger:       logger,
		timeLimit:    opts.TimeLimit,
		defaultCount: opts.DefaultCount,
		now:          opts.Now,
	}
}

// StartTest loads a test and makes it the chat's active session.
func (s *QuizService) StartTest(ctx context.Context, chatID int64, testID string) (*entities.Session, error) {
	if err := s.checkFree(chatID); err != nil {
		return nil, err
	}

	test, err := s.loader.LoadTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	return s.begin(chatID, test, "test", s.timeLimit), nil
}

// StartDaily loads today's drill for examID.
func (s *QuizService) StartDaily(ctx context.Context, chatID int64, examID string) (*entities.Session, error) {
	if err := s.checkFree(chatID); err != nil {
		return nil, err
	}

	test, err := s.loader.LoadDaily(ctx, examID)
	if err != nil {
		return nil, err
	}

	return s.begin(chatID, test, "daily", s.timeLimit), nil
}

// StartFocus starts today's drill for examID as a focus session: the whole
// attempt must fit in limit, which overrides the configured time limit.
func (s *QuizService) StartFocus(ctx context.Context, chatID int64, examID string, limit time.Duration) (*entities.Session, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("focus duration %s: %w", limit, entities.ErrValidation)
	}
	if err := s.checkFree(chatID); err != nil {
		return nil, err
	}

	test, err := s.loader.LoadDaily(ctx, examID)
	if err != nil {
		return nil, err
	}

	return s.begin(chatID, test, "focus", limit), nil
}

// StartPractice asks the server for a topic test and starts it.
func (s *QuizService) StartPractice(ctx context.Context, chatID int64, examID, topic string, count int) (*entities.Session, error) {
	if err := s.checkFree(chatID); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = s.defaultCount
	}

	testID, err := s.tests.GenerateTest(ctx, api.GenerateRequest{ExamID: examID, Topic: topic, Count: count})
	if err != nil {
		return nil, fmt.Errorf("generate test: %w", err)
	}

	test, err := s.loader.LoadTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.ExamID == "" {
		test.ExamID = examID
	}

	return s.begin(chatID, test, "practice", s.timeLimit), nil
}

// checkFree rejects a start while the chat has an attempt that is still
// being answered or submitted.
func (s *QuizService) checkFree(chatID int64) error {
	prev, ok := s.store.Get(chatID)
	if !ok {
		return nil
	}

	switch prev.State() {
	case entities.StateActive, entities.StateSubmitting:
		return ErrSessionInProgress
	}

	s.store.Delete(chatID)
	s.metrics.QuizEnded()
	return nil
}

func (s *QuizService) begin(chatID int64, test entities.Test, source string, limit time.Duration) *entities.Session {
	session := entities.NewSession(uuid.NewString(), test, s.now).WithTimeLimit(limit)
	s.store.Put(chatID, session)
	s.metrics.QuizStarted(source)

	s.logger.Info("quiz started",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", session.ID),
		zap.String("test_id", test.ID),
		zap.String("source", source),
		zap.Int("questions", len(test.Questions)),
		zap.Duration("time_limit", limit),
	)

	return session
}

// Current returns the chat's session.
func (s *QuizService) Current(chatID int64) (*entities.Session, bool) {
	return s.store.Get(chatID)
}

func (s *QuizService) session(chatID int64) (*entities.Session, error) {
	session, ok := s.store.Get(chatID)
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}

// Select records an option for the current question. A selection after
// the deadline ends the session and submits it like Expire; the returned
// snapshot is then no longer active.
func (s *QuizService) Select(ctx context.Context, chatID int64, accountID string, optionIndex int) (entities.Snapshot, error) {
	session, err := s.session(chatID)
	if err != nil {
		return entities.Snapshot{}, err
	}

	err = session.Select(optionIndex)
	switch {
	case errors.Is(err, entities.ErrTimeUp):
		s.logger.Info("quiz time limit reached on select",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", session.ID),
		)
		_, err = s.finalizer.Submit(ctx, session, accountID)
		return session.Snapshot(), err
	case err != nil:
		return entities.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Advance moves to the next question. After the last question the attempt
// is submitted on behalf of accountID; a submission error is returned along
// with the snapshot so the caller can offer a retry.
func (s *QuizService) Advance(ctx context.Context, chatID int64, accountID string) (entities.Snapshot, error) {
	session, err := s.session(chatID)
	if err != nil {
		return entities.Snapshot{}, err
	}

	finished, err := session.Advance()
	if err != nil {
		return entities.Snapshot{}, err
	}
	if !finished {
		return session.Snapshot(), nil
	}

	_, err = s.finalizer.Submit(ctx, session, accountID)
	return session.Snapshot(), err
}

// Expire ends a session whose deadline has passed and submits it. expired is
// false when the session is untimed or still within its limit.
func (s *QuizService) Expire(ctx context.Context, chatID int64, accountID string) (snap entities.Snapshot, expired bool, err error) {
	session, err := s.session(chatID)
	if err != nil {
		return entities.Snapshot{}, false, err
	}

	if !session.Expire() {
		return session.Snapshot(), false, nil
	}

	s.logger.Info("quiz time limit reached",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", session.ID),
	)

	_, err = s.finalizer.Submit(ctx, session, accountID)
	return session.Snapshot(), true, err
}

// Retry resubmits a session whose submission failed.
func (s *QuizService) Retry(ctx context.Context, chatID int64, accountID string) (entities.Snapshot, error) {
	session, err := s.session(chatID)
	if err != nil {
		return entities.Snapshot{}, err
	}

	_, err = s.finalizer.Submit(ctx, session, accountID)
	return session.Snapshot(), err
}

// Cancel abandons an active session without contacting the server.
func (s *QuizService) Cancel(chatID int64) error {
	session, err := s.session(chatID)
	if err != nil {
		return err
	}

	if err := session.Abandon(); err != nil {
		return err
	}

	s.store.Delete(chatID)
	s.metrics.QuizEnded()
	s.logger.Info("quiz cancelled", zap.Int64("chat_id", chatID), zap.String("session_id", session.ID))
	return nil
}

// Dismiss drops a session that is no longer being answered, such as a
// completed one whose review was shown.
func (s *QuizService) Dismiss(chatID int64) {
	session, ok := s.store.Get(chatID)
	if !ok {
		return
	}
	switch session.State() {
	case entities.StateActive, entities.StateSubmitting:
		return
	}
	s.store.Delete(chatID)
	s.metrics.QuizEnded()
}
