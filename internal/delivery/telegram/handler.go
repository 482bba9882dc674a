package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aliskhannn/examprep-bot/internal/metrics"
)

// Options tune the quiz presentation.
type Options struct {
	TickInterval time.Duration // how often the question timer is redrawn
	RateLimit    float64       // timer edits per second across all chats
	DefaultCount int           // practice questions when the user has no preference
}

type Handler struct {
	bot             *tgbotapi.BotAPI
	logger          *zap.Logger
	metrics         *metrics.Metrics
	userService     UserService
	quizService     QuizService
	settingsService SettingsService
	catalogService  CatalogService
	resetService    ResetService
	quizMessages    QuizMessages
	reminders       ReminderMessages
	drafts          ProfileDrafts
	limiter         *rate.Limiter
	opts            Options

	// root is the context of Run; timers derive from it so they stop on shutdown.
	root context.Context
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	m *metrics.Metrics,
	userService UserService,
	quizService QuizService,
	settingsService SettingsService,
	catalogService CatalogService,
	resetService ResetService,
	quizMessages QuizMessages,
	reminders ReminderMessages,
	drafts ProfileDrafts,
	opts Options,
) *Handler {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 5 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = 10
	}

	return &Handler{
		bot:             bot,
		logger:          logger,
		metrics:         m,
		userService:     userService,
		quizService:     quizService,
		settingsService: settingsService,
		catalogService:  catalogService,
		resetService:    resetService,
		quizMessages:    quizMessages,
		reminders:       reminders,
		drafts:          drafts,
		limiter:         rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		opts:            opts,
		root:            context.Background(),
	}
}

// Commands lists the bot commands shown in the Telegram menu.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "daily", Description: "Today's daily drill"},
		{Command: "practice", Description: "Practice a topic (usage: /practice algebra 10)"},
		{Command: "focus", Description: "Timed drill with your focus duration"},
		{Command: "quiz", Description: "Open a test by ID (usage: /quiz <id>)"},
		{Command: "exams", Description: "Choose your target exam"},
		{Command: "stats", Description: "Your performance dashboard"},
		{Command: "settings", Description: "Settings"},
		{Command: "login", Description: "Log in (usage: /login email password)"},
		{Command: "otp", Description: "Log in by phone (usage: /otp +911234567890)"},
		{Command: "profile", Description: "Complete your profile (usage: /profile <name>)"},
		{Command: "cancel", Description: "Cancel the current quiz"},
		{Command: "logout", Description: "Log out"},
		{Command: "reset", Description: "Forget your login and settings"},
		{Command: "help", Description: "Help"},
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.root = ctx
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.Bool("command", update.Message.IsCommand()),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	if err := h.userService.EnsureUser(ctx, from.ID, chatID); err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if !update.Message.IsCommand() {
		h.metrics.ObserveUpdate("text", nil)
		h.send(newPlainMessage(chatID, msgUseCommands))
		return
	}

	cmd := update.Message.Command()
	args := update.Message.CommandArguments()

	var fn HandlerFunc
	switch cmd {
	case "start":
		fn = h.handleStart(from.ID)
	case "help":
		fn = h.handleHelp()
	case "login":
		fn = h.handleLogin(from.ID, update.Message.MessageID, args)
	case "otp":
		fn = h.handleSendOTP(args)
	case "verify":
		fn = h.handleVerifyOTP(from.ID, args)
	case "logout":
		fn = h.handleLogout(from.ID)
	case "profile":
		fn = h.handleProfile(from.ID, args)
	case "exams":
		fn = h.handleExams(args)
	case "daily":
		fn = h.handleDaily(from.ID, args)
	case "focus":
		fn = h.handleFocus(from.ID, args)
	case "quiz":
		fn = h.handleQuizByID(from.ID, args)
	case "practice":
		fn = h.handlePractice(from.ID, args)
	case "stats":
		fn = h.handleStats(from.ID)
	case "settings":
		fn = h.handleSettings(from.ID)
	case "cancel":
		fn = h.handleCancelCommand()
	case "reset":
		fn = h.handleReset()
	default:
		fn = h.handleUnknown()
	}

	err := h.withErrorHandling(fn)(ctx, chatID)
	h.metrics.ObserveUpdate("command_"+commandLabel(cmd), err)
}

// commandLabel keeps metric labels bounded to known commands.
func commandLabel(cmd string) string {
	for _, c := range Commands() {
		if c.Command == cmd {
			return cmd
		}
	}
	if cmd == "verify" {
		return cmd
	}
	return "unknown"
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// sendMessage sends c and returns the ID of the new message.
func (h *Handler) sendMessage(c tgbotapi.Chattable) (int, error) {
	msg, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message", zap.Error(err))
		return 0, err
	}
	return msg.MessageID, nil
}

// request performs a Bot API call that does not return a message.
func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.Debug("telegram request failed", zap.Error(err))
	}
}
