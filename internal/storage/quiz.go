package storage

import (
	"context"
	"sync"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// quizEntry is the session of a chat and the message it is rendered in.
type quizEntry struct {
	session   *entities.Session
	messageID int
	stopTimer context.CancelFunc
}

// QuizStorage provides in-memory storage for quiz sessions by chat ID.
// Sessions do not survive a restart.
type QuizStorage struct {
	mu      sync.RWMutex
	entries map[int64]*quizEntry
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		entries: make(map[int64]*quizEntry),
	}
}

// Put stores the session of a chat, stopping the timer of any session it replaces.
func (s *QuizStorage) Put(chatID int64, session *entities.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[chatID]; ok && prev.stopTimer != nil {
		prev.stopTimer()
	}
	s.entries[chatID] = &quizEntry{session: session}
}

// Get retrieves the session of a chat.
func (s *QuizStorage) Get(chatID int64) (*entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[chatID]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Delete removes the session of a chat and stops its timer.
func (s *QuizStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[chatID]; ok && e.stopTimer != nil {
		e.stopTimer()
	}
	delete(s.entries, chatID)
}

// SetMessage records the message the current question is rendered in.
func (s *QuizStorage) SetMessage(chatID int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[chatID]; ok {
		e.messageID = messageID
	}
}

// Message returns the message the current question is rendered in.
func (s *QuizStorage) Message(chatID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[chatID]
	if !ok || e.messageID == 0 {
		return 0, false
	}
	return e.messageID, true
}

// SetTimer registers the cancel func of the display timer of a chat,
// stopping the previous one. It is a no-op when the chat has no session.
func (s *QuizStorage) SetTimer(chatID int64, stop context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[chatID]
	if !ok {
		return false
	}
	if e.stopTimer != nil {
		e.stopTimer()
	}
	e.stopTimer = stop
	return true
}

// StopTimer stops the display timer of a chat, if any.
func (s *QuizStorage) StopTimer(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[chatID]; ok && e.stopTimer != nil {
		e.stopTimer()
		e.stopTimer = nil
	}
}

// StopAll stops every display timer. Used on shutdown.
func (s *QuizStorage) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.stopTimer != nil {
			e.stopTimer()
			e.stopTimer = nil
		}
	}
}
