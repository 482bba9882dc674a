package telegram

import (
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// SendReminder sends the daily drill reminder and removes the previous one
// so a chat never collects a pile of stale reminders.
func (h *Handler) SendReminder(chatID int64, payload entities.ReminderPayload) error {
	msg := newMessage(chatID, renderReminder(payload))
	msg.ReplyMarkup = buildReminderKeyboard(payload.ExamID)

	msgID, err := h.sendMessage(msg)
	if err != nil {
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) && tgErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %s", entities.ErrChatUnavailable, tgErr.Message)
		}
		return err
	}

	prev, hadPrev := h.reminders.UpsertAndGetPrev(chatID, msgID)
	if hadPrev && prev.MessageID != msgID {
		if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, prev.MessageID)); err != nil {
			h.logger.Debug("failed to delete previous reminder",
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", prev.MessageID),
				zap.Error(err),
			)
		}
	}

	return nil
}
