package service

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres/repository"
)

type fakeTestAPI struct {
	mu        sync.Mutex
	tests     map[string]*api.TestRecord
	daily     map[string]*api.TestRecord
	err       error
	generated api.GenerateRequest
	genID     string

	submitErr  error
	analysis   *entities.Analysis
	submitted  []entities.SubmissionPayload
	submitHook func()
}

func newFakeTestAPI() *fakeTestAPI {
	return &fakeTestAPI{
		tests: make(map[string]*api.TestRecord),
		daily: make(map[string]*api.TestRecord),
	}
}

func (f *fakeTestAPI) GetTest(_ context.Context, testID string) (*api.TestRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tests[testID], nil
}

func (f *fakeTestAPI) GetDailyTest(_ context.Context, examID string) (*api.TestRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.daily[examID], nil
}

func (f *fakeTestAPI) GenerateTest(_ context.Context, req api.GenerateRequest) (string, error) {
	f.generated = req
	if f.err != nil {
		return "", f.err
	}
	return f.genID, nil
}

func (f *fakeTestAPI) SubmitTest(_ context.Context, payload entities.SubmissionPayload) (*entities.Analysis, error) {
	f.mu.Lock()
	f.submitted = append(f.submitted, payload)
	hook := f.submitHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.analysis, nil
}

func (f *fakeTestAPI) submissions() []entities.SubmissionPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.SubmissionPayload(nil), f.submitted...)
}

// record builds a test record from literal JSON question entries.
func record(id string, entries ...string) *api.TestRecord {
	rec := &api.TestRecord{ID: id, ExamID: "ssc", Title: "Mock " + id}
	for _, e := range entries {
		rec.Questions = append(rec.Questions, json.RawMessage(e))
	}
	return rec
}

func directQuestion(id string) string {
	return `{"_id":"` + id + `","text":"Question ` + id + `","options":["A","B","C","D"],"correctIndex":1,"topic":"gk"}`
}

type fakeStore struct {
	mu       sync.Mutex
	sessions map[int64]*entities.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]*entities.Session)}
}

func (s *fakeStore) Get(chatID int64) (*entities.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

func (s *fakeStore) Put(chatID int64, session *entities.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = session
}

func (s *fakeStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

type fakeUserRepo struct {
	users map[int64]*entities.User
	saves int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*entities.User)}
}

func (r *fakeUserRepo) SaveUser(_ context.Context, user *entities.User) error {
	r.saves++
	if u, ok := r.users[user.ID]; ok {
		u.ChatID = user.ChatID
		u.IsActive = user.IsActive
		return nil
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID int64) (*entities.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateCredentials(_ context.Context, user *entities.User) error {
	u, ok := r.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.AccountID = user.AccountID
	u.Token = user.Token
	u.Name = user.Name
	u.IsProfileComplete = user.IsProfileComplete
	return nil
}

func (r *fakeUserRepo) ClearCredentials(_ context.Context, userID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.AccountID, u.Token = "", ""
	return nil
}

type fakeSettingsRepo struct {
	settings map[int64]*entities.UserSettings
	saves    int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*entities.UserSettings)}
}

func (r *fakeSettingsRepo) GetByUserID(_ context.Context, userID int64) (*entities.UserSettings, error) {
	s, ok := r.settings[userID]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, settings *entities.UserSettings) error {
	cp := *settings
	r.settings[settings.UserID] = &cp
	r.saves++
	return nil
}

type fakeReminderRepo struct {
	mu          sync.Mutex
	due         []*entities.ReminderWithUser
	sent        map[int64]time.Time
	deactivated []int64
	batches     int
}

// GetDueRemindersBatch mirrors the query: deactivated users drop out and
// rows are paged by user ID. due must be sorted by UserID.
func (r *fakeReminderRepo) GetDueRemindersBatch(_ context.Context, _ time.Time, limit int, afterID int64) ([]*entities.ReminderWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++

	var out []*entities.ReminderWithUser
	for _, rwu := range r.due {
		if rwu.UserID <= afterID || slices.Contains(r.deactivated, rwu.UserID) {
			continue
		}
		out = append(out, rwu)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) MarkAsSent(_ context.Context, userID int64, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[int64]time.Time)
	}
	r.sent[userID] = sentAt
	return nil
}

func (r *fakeReminderRepo) Deactivate(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivated = append(r.deactivated, userID)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	payloads map[int64]entities.ReminderPayload
	err      error
	blocked  func(chatID int64) bool
}

func (n *fakeNotifier) SendReminder(chatID int64, payload entities.ReminderPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if n.blocked != nil && n.blocked(chatID) {
		return entities.ErrChatUnavailable
	}
	if n.payloads == nil {
		n.payloads = make(map[int64]entities.ReminderPayload)
	}
	n.payloads[chatID] = payload
	return nil
}
