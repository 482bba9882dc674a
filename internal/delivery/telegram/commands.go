package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

func (h *Handler) handleStart(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		examID := "general"
		if settings, err := h.settingsService.GetOrCreate(ctx, userID); err == nil {
			examID = settings.PrimaryExam()
		} else {
			h.logger.Warn("settings unavailable", zap.Int64("user_id", userID), zap.Error(err))
		}

		msg := newPlainMessage(chatID, msgWelcome)
		msg.ReplyMarkup = buildMainKeyboard(examID)
		return h.send(msg)
	}
}

func (h *Handler) handleHelp() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newPlainMessage(chatID, msgHelp))
	}
}

func (h *Handler) handleUnknown() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

// handleLogin signs the user in with email and password. The command is
// deleted from the chat since it carries the password.
func (h *Handler) handleLogin(userID int64, messageID int, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return h.send(newPlainMessage(chatID, msgLoginUsage))
		}

		h.request(tgbotapi.NewDeleteMessage(chatID, messageID))

		user, err := h.userService.LoginEmail(ctx, userID, fields[0], fields[1])
		if err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, loggedInText(user)))
	}
}

func (h *Handler) handleSendOTP(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		phone := strings.TrimSpace(args)
		if phone == "" || strings.ContainsAny(phone, " \t") {
			return h.send(newPlainMessage(chatID, msgOTPUsage))
		}

		if err := h.userService.SendOTP(ctx, phone); err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, fmt.Sprintf(msgOTPSent, phone)))
	}
}

func (h *Handler) handleVerifyOTP(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return h.send(newPlainMessage(chatID, msgVerifyUsage))
		}

		user, err := h.userService.VerifyOTP(ctx, userID, fields[0], fields[1])
		if err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, loggedInText(user)))
	}
}

func loggedInText(user *entities.User) string {
	text := "You are logged in"
	if user.Name != "" {
		text += " as " + user.Name
	}
	text += "."
	if !user.IsProfileComplete {
		text += "\nYour profile is incomplete. Finish it with /profile <your name> to get personalised tests."
	}
	return text
}

// handleProfile completes onboarding. The name comes with the command; the
// target exam is picked from the list that follows.
func (h *Handler) handleProfile(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		name := strings.Join(strings.Fields(args), " ")
		if name == "" || utf8.RuneCountInString(name) > maxProfileName {
			return h.send(newPlainMessage(chatID, msgProfileUsage))
		}

		ctx, user := h.withUser(ctx, userID)
		if !user.Authenticated() {
			return entities.ErrUnauthorized
		}

		exams, err := h.catalogService.Exams(ctx, "")
		if err != nil {
			return err
		}
		if len(exams) == 0 {
			return h.send(newPlainMessage(chatID, msgNoExams))
		}

		h.drafts.Put(chatID, name)
		msg := newPlainMessage(chatID, fmt.Sprintf(msgProfilePickExam, name))
		msg.ReplyMarkup = buildExamKeyboard(exams, nil, buildExamProfileCallback)
		return h.send(msg)
	}
}

func profileSavedText(user *entities.User, examName string) string {
	text := fmt.Sprintf(msgProfileSaved, user.Name, examName)
	if !user.IsProfileComplete {
		text += "\n" + msgProfileStillIncomplete
	}
	return text
}

func (h *Handler) handleLogout(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := h.userService.Logout(ctx, userID); err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, msgLoggedOut))
	}
}

func (h *Handler) handleExams(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.sendExamList(ctx, chatID, strings.TrimSpace(args), "")
	}
}

// sendExamList shows the exams, optionally of one category, with buttons to
// pick the target exam.
func (h *Handler) sendExamList(ctx context.Context, chatID int64, category, current string) error {
	exams, err := h.catalogService.Exams(ctx, category)
	if err != nil {
		return err
	}
	if len(exams) == 0 {
		return h.send(newPlainMessage(chatID, msgNoExams))
	}

	var categories []entities.Category
	if category == "" {
		categories, err = h.catalogService.Categories(ctx)
		if err != nil {
			h.logger.Warn("categories unavailable", zap.Error(err))
		}
	}

	msg := newMessage(chatID, renderExams(exams, current))
	msg.ReplyMarkup = buildExamKeyboard(exams, categories, buildExamPickCallback)
	return h.send(msg)
}

func (h *Handler) handleDaily(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		ctx, user := h.withUser(ctx, userID)

		examID := strings.TrimSpace(args)
		if examID == "" {
			settings, err := h.settingsService.GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			examID = settings.PrimaryExam()
		}

		return h.startQuiz(ctx, chatID, user, func(ctx context.Context, chatID int64) (*entities.Session, error) {
			return h.quizService.StartDaily(ctx, chatID, examID)
		})
	}
}

// handleFocus runs the daily drill against the focus timer instead of the
// default time limit. An argument overrides the configured minutes.
func (h *Handler) handleFocus(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		ctx, user := h.withUser(ctx, userID)

		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		minutes := settings.Focus.DurationMinutes
		if arg := strings.TrimSpace(args); arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 || n > maxFocusMinutes {
				return h.send(newPlainMessage(chatID, msgFocusUsage))
			}
			minutes = n
		}

		examID := settings.PrimaryExam()
		limit := time.Duration(minutes) * time.Minute
		return h.startQuiz(ctx, chatID, user, func(ctx context.Context, chatID int64) (*entities.Session, error) {
			return h.quizService.StartFocus(ctx, chatID, examID, limit)
		})
	}
}

func (h *Handler) handleQuizByID(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		testID := strings.TrimSpace(args)
		if testID == "" {
			return h.send(newPlainMessage(chatID, msgQuizUsage))
		}

		ctx, user := h.withUser(ctx, userID)
		return h.startQuiz(ctx, chatID, user, func(ctx context.Context, chatID int64) (*entities.Session, error) {
			return h.quizService.StartTest(ctx, chatID, testID)
		})
	}
}

// handlePractice generates a test on a topic. The last argument is taken as
// the question count when it is a number.
func (h *Handler) handlePractice(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		topic, count, ok := parsePracticeArgs(args)
		if !ok {
			return h.send(newPlainMessage(chatID, msgPracticeUsage))
		}

		ctx, user := h.withUser(ctx, userID)

		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			count = settings.QuestionCount
		}
		if count <= 0 {
			count = h.opts.DefaultCount
		}

		examID := settings.PrimaryExam()
		return h.startQuiz(ctx, chatID, user, func(ctx context.Context, chatID int64) (*entities.Session, error) {
			return h.quizService.StartPractice(ctx, chatID, examID, topic, count)
		})
	}
}

func parsePracticeArgs(args string) (topic string, count int, ok bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", 0, false
	}

	if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
		if n <= 0 || n > 100 || len(fields) == 1 {
			return "", 0, false
		}
		count = n
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " "), count, true
}

func (h *Handler) handleStats(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		ctx, user := h.withUser(ctx, userID)

		dashboard, err := h.catalogService.Dashboard(ctx, user.AccountID)
		if err != nil {
			return err
		}

		msg := newMessage(chatID, renderDashboard(dashboard))
		return h.send(msg)
	}
}

func (h *Handler) handleSettings(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		msg := newMessage(chatID, renderSettings(settings))
		msg.ReplyMarkup = buildSettingsKeyboard(settings)
		return h.send(msg)
	}
}

// handleCancelCommand cancels the chat's quiz without confirmation.
func (h *Handler) handleCancelCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msgID, hasMsg := h.quizMessages.Message(chatID)

		if err := h.quizService.Cancel(chatID); err != nil {
			return err
		}

		if hasMsg {
			_ = h.send(newEdit(chatID, msgID, md(msgQuizCancelled)))
			return nil
		}
		return h.send(newPlainMessage(chatID, msgQuizCancelled))
	}
}

func (h *Handler) handleReset() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newPlainMessage(chatID, msgResetConfirm)
		msg.ReplyMarkup = buildResetConfirmKeyboard()
		return h.send(msg)
	}
}
