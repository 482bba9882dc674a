package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// startTimer redraws the question message every tick and, for timed
// sessions, submits the attempt when the deadline passes. The timer is
// registered with the quiz storage, which stops it whenever the session is
// replaced or removed.
func (h *Handler) startTimer(chatID int64, user *entities.User, sessionID string) {
	ctx, cancel := context.WithCancel(h.root)
	if !h.quizMessages.SetTimer(chatID, cancel) {
		cancel()
		return
	}

	go h.runTimer(ctx, chatID, *user, sessionID)
}

func (h *Handler) runTimer(ctx context.Context, chatID int64, user entities.User, sessionID string) {
	ticker := time.NewTicker(h.opts.TickInterval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if session, ok := h.quizService.Current(chatID); ok {
		if snap := session.Snapshot(); snap.Timed {
			t := time.NewTimer(snap.Remaining)
			defer t.Stop()
			deadline = t.C
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-deadline:
			h.expire(chatID, user, sessionID)
			return

		case <-ticker.C:
			session, ok := h.quizService.Current(chatID)
			if !ok || session.ID != sessionID {
				return
			}
			snap := session.Snapshot()
			if snap.State != entities.StateActive {
				return
			}

			msgID, ok := h.quizMessages.Message(chatID)
			if !ok {
				return
			}

			if err := h.limiter.Wait(ctx); err != nil {
				return
			}

			edit := newEditWithKeyboard(chatID, msgID, renderQuestion(snap), buildQuestionKeyboard(snap))
			if _, err := h.bot.Send(edit); err != nil {
				h.logger.Debug("timer redraw failed", zap.Int64("chat_id", chatID), zap.Error(err))
			}
		}
	}
}

// expire ends the session at its deadline and shows the result. The
// submission runs on the handler context so stopping the timer does not
// abort it.
func (h *Handler) expire(chatID int64, user entities.User, sessionID string) {
	session, ok := h.quizService.Current(chatID)
	if !ok || session.ID != sessionID {
		return
	}

	ctx := h.root
	if user.Token != "" {
		ctx = api.ContextWithToken(ctx, user.Token)
	}

	snap, expired, err := h.quizService.Expire(ctx, chatID, user.AccountID)
	if !expired {
		if err != nil {
			h.logger.Debug("expire skipped", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return
	}

	msgID, ok := h.quizMessages.Message(chatID)
	if !ok {
		sent, sendErr := h.sendMessage(tgbotapi.NewMessage(chatID, msgTimeUp))
		if sendErr != nil {
			return
		}
		msgID = sent
	}

	if err := h.finishQuiz(chatID, msgID, snap, err); err != nil {
		h.logger.Error("failed to show expired quiz", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
