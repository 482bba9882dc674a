package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb, "")
		return
	}

	chatID := cb.Message.Chat.ID
	if err := h.userService.EnsureUser(ctx, cb.From.ID, chatID); err != nil {
		h.logger.Debug("failed to ensure user on callback", zap.Error(err))
	}

	cd := decodeCallback(cb.Data)

	var fn HandlerFunc
	switch cd.Action {
	case actionQuiz:
		fn = func(ctx context.Context, chatID int64) error {
			return h.handleQuizCallback(ctx, cb, cd)
		}
	case actionExam:
		fn = h.handleExamCallback(cb, cd)
	case actionDaily:
		fn = h.handleDailyCallback(cb, cd)
	case actionSettings:
		fn = h.handleSettingsCallback(cb, cd)
	case actionStats:
		h.answerCallback(cb, "")
		fn = h.handleStats(cb.From.ID)
	case actionReset:
		fn = h.handleResetCallback(cb, cd)
	default:
		h.answerCallback(cb, "")
		return
	}

	err := h.withErrorHandling(fn)(ctx, chatID)
	if err != nil {
		// Remove the user's "clock" even when the handler failed.
		h.answerCallback(cb, "")
	}
	h.metrics.ObserveUpdate("callback_"+cd.Action, err)
}

func (h *Handler) handleExamCallback(cb *tgbotapi.CallbackQuery, cd callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		switch cd.param(0) {
		case examCategory:
			h.answerCallback(cb, "")
			return h.sendExamList(ctx, chatID, cd.param(1), "")

		case examPick:
			exam, err := h.catalogService.Exam(ctx, cd.param(1))
			if err != nil {
				return err
			}
			if _, err := h.settingsService.SetPrimaryExam(ctx, cb.From.ID, exam.ID); err != nil {
				return err
			}
			h.answerCallback(cb, msgSettingsSaved)

			msg := newPlainMessage(chatID, fmt.Sprintf(msgExamSaved, exam.Name))
			msg.ReplyMarkup = buildExamSavedKeyboard(exam.ID)
			return h.send(msg)

		case examProfile:
			return h.completeProfile(ctx, cb, chatID, cd.param(1))

		case examInfo:
			exam, err := h.catalogService.Exam(ctx, cd.param(1))
			if err != nil {
				return err
			}
			h.answerCallback(cb, "")
			for _, chunk := range splitMessage(renderExamDetails(exam), maxMessageLen) {
				if err := h.send(newMessage(chatID, chunk)); err != nil {
					return err
				}
			}
			return nil
		}

		h.answerCallback(cb, "")
		return nil
	}
}

// completeProfile sends the name stored by /profile with the picked exam.
// The draft is kept when the update fails so the user can pick again.
func (h *Handler) completeProfile(ctx context.Context, cb *tgbotapi.CallbackQuery, chatID int64, examID string) error {
	name, ok := h.drafts.Take(chatID)
	if !ok {
		h.answerCallback(cb, "")
		return h.send(newPlainMessage(chatID, msgProfileUsage))
	}

	exam, err := h.catalogService.Exam(ctx, examID)
	if err != nil {
		h.drafts.Put(chatID, name)
		return err
	}

	ctx, _ = h.withUser(ctx, cb.From.ID)
	user, err := h.userService.UpdateProfile(ctx, cb.From.ID, name, exam.ID)
	if err != nil {
		h.drafts.Put(chatID, name)
		return err
	}
	if _, err := h.settingsService.SetPrimaryExam(ctx, cb.From.ID, exam.ID); err != nil {
		h.logger.Warn("primary exam not saved", zap.Int64("user_id", cb.From.ID), zap.Error(err))
	}
	h.answerCallback(cb, msgSettingsSaved)

	msg := newPlainMessage(chatID, profileSavedText(user, exam.Name))
	msg.ReplyMarkup = buildExamSavedKeyboard(exam.ID)
	return h.send(msg)
}

func (h *Handler) handleDailyCallback(cb *tgbotapi.CallbackQuery, cd callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.answerCallback(cb, msgLoading)
		// The reminder did its job; the next one must not delete it.
		h.reminders.Delete(chatID)
		return h.handleDaily(cb.From.ID, cd.param(0))(ctx, chatID)
	}
}

func (h *Handler) handleSettingsCallback(cb *tgbotapi.CallbackQuery, cd callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		userID := cb.From.ID

		var (
			settings *entities.UserSettings
			err      error
		)

		switch cd.param(0) {
		case settingsExam:
			h.answerCallback(cb, "")
			current := ""
			if s, err := h.settingsService.GetOrCreate(ctx, userID); err == nil {
				current = s.PrimaryExam()
			}
			return h.sendExamList(ctx, chatID, "", current)

		case settingsFocus:
			n, ok := cd.intParam(1)
			if !ok {
				return entities.ErrValidation
			}
			settings, err = h.settingsService.SetFocusDuration(ctx, userID, n)

		case settingsCount:
			n, ok := cd.intParam(1)
			if !ok {
				return entities.ErrValidation
			}
			settings, err = h.settingsService.SetQuestionCount(ctx, userID, n)

		case settingsReminders:
			settings, err = h.settingsService.ToggleReminders(ctx, userID)

		case settingsHour:
			n, ok := cd.intParam(1)
			if !ok {
				return entities.ErrValidation
			}
			settings, err = h.settingsService.SetReminderHour(ctx, userID, n)

		default:
			settings, err = h.settingsService.GetOrCreate(ctx, userID)
		}
		if err != nil {
			return err
		}

		h.answerCallback(cb, "")

		// A reminder message has no settings text; answer with a fresh screen.
		if cd.param(0) == settingsMenu || !isSettingsMessage(cb.Message) {
			msg := newMessage(chatID, renderSettings(settings))
			msg.ReplyMarkup = buildSettingsKeyboard(settings)
			return h.send(msg)
		}

		return h.send(newEditWithKeyboard(chatID, cb.Message.MessageID, renderSettings(settings), buildSettingsKeyboard(settings)))
	}
}

func isSettingsMessage(m *tgbotapi.Message) bool {
	if m == nil {
		return false
	}
	first, _, _ := strings.Cut(m.Text, "\n")
	return strings.HasSuffix(first, "Settings")
}

func (h *Handler) handleResetCallback(cb *tgbotapi.CallbackQuery, cd callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if cd.param(0) != resetConfirm {
			h.answerCallback(cb, "")
			return h.send(tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, msgResetCancelled))
		}

		if err := h.resetService.ResetUser(ctx, cb.From.ID); err != nil {
			return err
		}

		h.answerCallback(cb, "")
		return h.send(tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, msgResetDone))
	}
}
