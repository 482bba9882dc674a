package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/storage"
)

type botCall struct {
	method string
	form   url.Values
}

// fakeBot serves the Bot API methods the handler uses and records every call.
type fakeBot struct {
	mu    sync.Mutex
	calls []botCall
	fail  map[string]bool
}

func newFakeBot(t *testing.T, failing ...string) (*tgbotapi.BotAPI, *fakeBot) {
	t.Helper()
	fb := &fakeBot{fail: make(map[string]bool)}
	for _, m := range failing {
		fb.fail[m] = true
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		_ = r.ParseForm()

		fb.mu.Lock()
		fb.calls = append(fb.calls, botCall{method: method, form: r.PostForm})
		failing := fb.fail[method]
		fb.mu.Unlock()

		switch {
		case method == "getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Exam","username":"exam_bot"}}`))
		case failing:
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":5,"type":"private"}}}`))
		}
	}))
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("token", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	return bot, fb
}

// sent returns the texts of the messages sent so far.
func (fb *fakeBot) sent() []botCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	var out []botCall
	for _, c := range fb.calls {
		if c.method == "sendMessage" {
			out = append(out, c)
		}
	}
	return out
}

type fakeUsers struct {
	UserService
	user    *entities.User
	profile struct{ name, exam string }
}

func (f *fakeUsers) EnsureUser(context.Context, int64, int64) error { return nil }

func (f *fakeUsers) Get(context.Context, int64) (*entities.User, error) {
	if f.user == nil {
		return nil, errors.New("no user")
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, _ int64, name, examID string) (*entities.User, error) {
	f.profile.name, f.profile.exam = name, examID
	u := *f.user
	u.Name, u.IsProfileComplete = name, true
	return &u, nil
}

type fakeQuiz struct {
	QuizService
	session    *entities.Session
	startErr   error
	focusExam  string
	focusLimit time.Duration
	cancelled  []int64
}

func (f *fakeQuiz) StartTest(context.Context, int64, string) (*entities.Session, error) {
	return f.session, f.startErr
}

func (f *fakeQuiz) StartFocus(_ context.Context, _ int64, examID string, limit time.Duration) (*entities.Session, error) {
	f.focusExam, f.focusLimit = examID, limit
	return f.session, f.startErr
}

func (f *fakeQuiz) Cancel(chatID int64) error {
	f.cancelled = append(f.cancelled, chatID)
	return nil
}

type fakeSettings struct {
	SettingsService
	settings *entities.UserSettings
	primary  string
}

func (f *fakeSettings) GetOrCreate(context.Context, int64) (*entities.UserSettings, error) {
	return f.settings, nil
}

func (f *fakeSettings) SetPrimaryExam(_ context.Context, _ int64, examID string) (*entities.UserSettings, error) {
	f.primary = examID
	f.settings.SetPrimaryExam(examID)
	return f.settings, nil
}

type fakeCatalog struct {
	CatalogService
	exams []entities.Exam
}

func (f *fakeCatalog) Exams(context.Context, string) ([]entities.Exam, error) {
	return f.exams, nil
}

func (f *fakeCatalog) Exam(_ context.Context, examID string) (*entities.Exam, error) {
	for _, e := range f.exams {
		if e.ID == examID {
			return &e, nil
		}
	}
	return nil, entities.ErrNotFound
}

// fakeQuizMessages never registers timers, so no goroutine outlives a test.
type fakeQuizMessages struct {
	messages map[int64]int
}

func (f *fakeQuizMessages) SetMessage(chatID int64, messageID int) {
	if f.messages == nil {
		f.messages = make(map[int64]int)
	}
	f.messages[chatID] = messageID
}

func (f *fakeQuizMessages) Message(chatID int64) (int, bool) {
	id, ok := f.messages[chatID]
	return id, ok
}

func (f *fakeQuizMessages) SetTimer(int64, context.CancelFunc) bool { return false }
func (f *fakeQuizMessages) StopTimer(int64)                         {}

type handlerDeps struct {
	bot      *fakeBot
	users    *fakeUsers
	quiz     *fakeQuiz
	settings *fakeSettings
	catalog  *fakeCatalog
	messages *fakeQuizMessages
	drafts   *storage.ProfileDrafts
}

func newTestHandler(t *testing.T, failing ...string) (*Handler, *handlerDeps) {
	t.Helper()
	bot, fb := newFakeBot(t, failing...)

	test := entities.Test{ID: "t1", Title: "Mock", Questions: []entities.Question{{ID: "q1", Text: "2+2?", Options: []string{"3", "4"}}}}
	d := &handlerDeps{
		bot:      fb,
		users:    &fakeUsers{user: &entities.User{ID: 5, ChatID: 5, AccountID: "acc-1", Token: "tok"}},
		quiz:     &fakeQuiz{session: entities.NewSession("0f8fad5b-d9cb", test, nil)},
		settings: &fakeSettings{settings: entities.NewUserSettings(5)},
		catalog: &fakeCatalog{exams: []entities.Exam{{
			ID:       "ssc",
			Name:     "SSC CGL",
			Syllabus: map[string][]string{"Quant": {"Algebra"}},
		}}},
		messages: &fakeQuizMessages{},
		drafts:   storage.NewProfileDrafts(),
	}

	h := NewHandler(bot, zap.NewNop(), nil, d.users, d.quiz, d.settings, d.catalog, nil, d.messages, nil, d.drafts, Options{})
	return h, d
}

func TestStartQuiz_UnshownQuizIsCancelled(t *testing.T) {
	h, d := newTestHandler(t, "sendMessage")

	err := h.handleQuizByID(5, "t1")(context.Background(), 5)
	if err == nil {
		t.Fatal("send failure not reported")
	}
	if len(d.quiz.cancelled) != 1 || d.quiz.cancelled[0] != 5 {
		t.Fatalf("cancelled = %v, want [5]", d.quiz.cancelled)
	}
	if _, ok := d.messages.Message(5); ok {
		t.Fatal("message recorded for a quiz that was never shown")
	}
}

func TestStartQuiz_ShownQuizIsKept(t *testing.T) {
	h, d := newTestHandler(t)

	if err := h.handleQuizByID(5, "t1")(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if len(d.quiz.cancelled) != 0 {
		t.Fatalf("cancelled = %v", d.quiz.cancelled)
	}
	if id, ok := d.messages.Message(5); !ok || id != 77 {
		t.Fatalf("message = %d, %v", id, ok)
	}
}

func TestHandleFocus(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		want      time.Duration
		wantStart bool
	}{
		{"configured duration", "", 50 * time.Minute, true},
		{"argument overrides", "90", 90 * time.Minute, true},
		{"zero rejected", "0", 0, false},
		{"too long rejected", "600", 0, false},
		{"not a number", "soon", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, d := newTestHandler(t)
			d.settings.settings.Focus.DurationMinutes = 50
			d.settings.settings.SetPrimaryExam("ssc")

			if err := h.handleFocus(5, tc.args)(context.Background(), 5); err != nil {
				t.Fatal(err)
			}

			if !tc.wantStart {
				if d.quiz.focusLimit != 0 {
					t.Fatalf("quiz started with %v", d.quiz.focusLimit)
				}
				sent := d.bot.sent()
				if len(sent) != 1 || sent[0].form.Get("text") != msgFocusUsage {
					t.Fatalf("sent = %+v", sent)
				}
				return
			}
			if d.quiz.focusLimit != tc.want || d.quiz.focusExam != "ssc" {
				t.Fatalf("focus = %s %v, want ssc %v", d.quiz.focusExam, d.quiz.focusLimit, tc.want)
			}
		})
	}
}

func TestProfileFlow(t *testing.T) {
	h, d := newTestHandler(t)
	ctx := context.Background()

	if err := h.handleProfile(5, "  Asha   K ")(ctx, 5); err != nil {
		t.Fatal(err)
	}
	sent := d.bot.sent()
	if len(sent) != 1 || !strings.Contains(sent[0].form.Get("reply_markup"), buildExamProfileCallback("ssc")) {
		t.Fatalf("exam picker not shown: %+v", sent)
	}

	cb := &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: 5}},
		Data:    buildExamProfileCallback("ssc"),
	}
	h.handleCallback(ctx, cb)

	if d.users.profile.name != "Asha K" || d.users.profile.exam != "ssc" {
		t.Fatalf("profile = %+v", d.users.profile)
	}
	if d.settings.primary != "ssc" {
		t.Fatalf("primary exam = %q", d.settings.primary)
	}
	sent = d.bot.sent()
	last := sent[len(sent)-1]
	if !strings.Contains(last.form.Get("text"), "Profile saved: Asha K, preparing for SSC CGL.") {
		t.Fatalf("reply = %q", last.form.Get("text"))
	}
	if !strings.Contains(last.form.Get("reply_markup"), buildExamInfoCallback("ssc")) {
		t.Fatalf("details button missing: %s", last.form.Get("reply_markup"))
	}

	// The draft is consumed; a second tap asks to start over.
	h.handleCallback(ctx, cb)
	sent = d.bot.sent()
	if got := sent[len(sent)-1].form.Get("text"); got != msgProfileUsage {
		t.Fatalf("second tap reply = %q", got)
	}
}

func TestProfileRequiresLogin(t *testing.T) {
	h, d := newTestHandler(t)
	d.users.user.Token = ""

	err := h.handleProfile(5, "Asha")(context.Background(), 5)
	if !errors.Is(err, entities.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if _, ok := d.drafts.Take(5); ok {
		t.Fatal("draft stored for a logged out user")
	}
}

func TestExamInfoCallbackSendsDetails(t *testing.T) {
	h, d := newTestHandler(t)

	h.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb2",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: 5}},
		Data:    buildExamInfoCallback("ssc"),
	})

	sent := d.bot.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages", len(sent))
	}
	if text := sent[0].form.Get("text"); !strings.Contains(text, "Syllabus") || !strings.Contains(text, "Quant: Algebra") {
		t.Fatalf("details = %q", text)
	}
	if sent[0].form.Get("parse_mode") != tgbotapi.ModeMarkdownV2 {
		t.Fatalf("parse mode = %q", sent[0].form.Get("parse_mode"))
	}
}
