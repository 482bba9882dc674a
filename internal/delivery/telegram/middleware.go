package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling logs handler failures and tells the user what went wrong.
// The error is returned so callers can record it.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		if err == nil {
			return nil
		}

		text, expected := userMessage(err)
		if expected {
			h.logger.Info("request rejected",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		} else {
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}

		_ = h.send(newPlainMessage(chatID, text))
		return err
	}
}

// userMessage maps an error to the text shown in the chat. expected is false
// for failures that deserve an error-level log.
func userMessage(err error) (text string, expected bool) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return msgNoQuiz, true
	case errors.Is(err, service.ErrSessionInProgress):
		return msgQuizInProgress, true
	case errors.Is(err, entities.ErrEmptyTest):
		return msgEmptyTest, true
	case errors.Is(err, entities.ErrMalformedQuestion):
		return msgMalformedTest, true
	case errors.Is(err, entities.ErrNotFound):
		return msgTestNotFound, true
	case errors.Is(err, entities.ErrUnauthorized):
		return msgLoginRequired, true
	case errors.Is(err, entities.ErrValidation):
		return msgRejected, true
	case errors.Is(err, entities.ErrTimeUp):
		return msgTimeUp, true
	case errors.Is(err, entities.ErrSubmissionInFlight):
		return msgSubmissionInFlight, true
	case errors.Is(err, entities.ErrInvalidState), errors.Is(err, entities.ErrInvalidOption):
		return msgStaleAction, true
	case errors.Is(err, entities.ErrNetwork):
		return msgNetworkError, false
	default:
		return msgInternalError, false
	}
}

// withUser loads the Telegram user and attaches their bearer token to ctx.
// A user that cannot be loaded is treated as logged out.
func (h *Handler) withUser(ctx context.Context, userID int64) (context.Context, *entities.User) {
	user, err := h.userService.Get(ctx, userID)
	if err != nil || user == nil {
		if err != nil {
			h.logger.Debug("user not loaded", zap.Int64("user_id", userID), zap.Error(err))
		}
		return ctx, &entities.User{ID: userID}
	}

	if user.Token != "" {
		ctx = api.ContextWithToken(ctx, user.Token)
	}
	return ctx, user
}
