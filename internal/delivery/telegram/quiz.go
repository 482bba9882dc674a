package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/service"
)

type quizStarter func(ctx context.Context, chatID int64) (*entities.Session, error)

// startQuiz loads a test, shows its first question and starts the timer.
// When the test cannot be loaded the exam list is offered instead.
func (h *Handler) startQuiz(ctx context.Context, chatID int64, user *entities.User, start quizStarter) error {
	session, err := start(ctx, chatID)
	if err != nil {
		if !isLoadFailure(err) {
			return err
		}

		text, _ := userMessage(err)
		h.logger.Info("test not loaded", zap.Int64("chat_id", chatID), zap.Error(err))
		_ = h.send(newPlainMessage(chatID, text))
		return h.sendExamList(ctx, chatID, "", "")
	}

	snap := session.Snapshot()
	msg := newMessage(chatID, renderQuestion(snap))
	msg.ReplyMarkup = buildQuestionKeyboard(snap)

	msgID, err := h.sendMessage(msg)
	if err != nil {
		// Nobody can answer a quiz that was never shown.
		if cerr := h.quizService.Cancel(chatID); cerr != nil {
			h.logger.Warn("failed to drop unshown quiz", zap.Int64("chat_id", chatID), zap.Error(cerr))
		}
		return err
	}

	h.quizMessages.SetMessage(chatID, msgID)
	h.startTimer(chatID, user, snap.ID)
	return nil
}

func isLoadFailure(err error) bool {
	return errors.Is(err, entities.ErrNotFound) ||
		errors.Is(err, entities.ErrEmptyTest) ||
		errors.Is(err, entities.ErrMalformedQuestion)
}

// handleQuizCallback handles the buttons under a quiz message.
func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) error {
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	session, ok := h.quizService.Current(chatID)
	if !ok || sessionTag(session.ID) != cd.param(1) {
		h.answerCallback(cb, msgStaleAction)
		return nil
	}

	ctx, user := h.withUser(ctx, cb.From.ID)

	switch cd.param(0) {
	case quizOption:
		idx, ok := cd.intParam(2)
		if !ok {
			return entities.ErrInvalidOption
		}
		snap, err := h.quizService.Select(ctx, chatID, user.AccountID, idx)
		if err != nil && snap.ID == "" {
			return err
		}
		h.answerCallback(cb, "")
		if snap.State != entities.StateActive {
			// The deadline passed before the tap.
			return h.finishQuiz(chatID, msgID, snap, err)
		}
		return h.send(newEditWithKeyboard(chatID, msgID, renderQuestion(snap), buildQuestionKeyboard(snap)))

	case quizNext:
		h.quizMessages.StopTimer(chatID)
		snap, err := h.quizService.Advance(ctx, chatID, user.AccountID)
		if err != nil && snap.ID == "" {
			// Not advanced; keep the question running.
			h.startTimer(chatID, user, session.ID)
			return err
		}
		h.answerCallback(cb, "")
		if snap.State == entities.StateActive {
			err := h.send(newEditWithKeyboard(chatID, msgID, renderQuestion(snap), buildQuestionKeyboard(snap)))
			// The timer also carries the deadline, so it runs even when the redraw failed.
			h.startTimer(chatID, user, snap.ID)
			return err
		}
		return h.finishQuiz(chatID, msgID, snap, err)

	case quizRetry:
		h.answerCallback(cb, msgSubmitting)
		snap, err := h.quizService.Retry(ctx, chatID, user.AccountID)
		if errors.Is(err, entities.ErrSubmissionInFlight) || errors.Is(err, entities.ErrInvalidState) {
			return err
		}
		return h.finishQuiz(chatID, msgID, snap, err)

	case quizCancel:
		h.quizMessages.StopTimer(chatID)
		h.answerCallback(cb, "")
		return h.send(newEditWithKeyboard(chatID, msgID, md(msgCancelConfirm), buildCancelConfirmKeyboard(session.ID)))

	case quizCancelConfirm:
		if err := h.quizService.Cancel(chatID); err != nil {
			return err
		}
		h.answerCallback(cb, "")
		return h.send(newEdit(chatID, msgID, md(msgQuizCancelled)))

	case quizCancelKeep:
		snap := session.Snapshot()
		if snap.State != entities.StateActive {
			return entities.ErrInvalidState
		}
		h.answerCallback(cb, msgQuizKept)
		err := h.send(newEditWithKeyboard(chatID, msgID, renderQuestion(snap), buildQuestionKeyboard(snap)))
		h.startTimer(chatID, user, snap.ID)
		return err

	case quizClose:
		h.quizService.Dismiss(chatID)
		h.answerCallback(cb, "")
		return h.send(newEdit(chatID, msgID, md("Attempt discarded.")))

	default:
		h.answerCallback(cb, "")
		return nil
	}
}

// finishQuiz shows the outcome of a submission: the review on success, a
// retry prompt on failure.
func (h *Handler) finishQuiz(chatID int64, msgID int, snap entities.Snapshot, err error) error {
	h.quizMessages.StopTimer(chatID)

	switch snap.State {
	case entities.StateComplete:
		review := service.BuildReview(snap)
		examID := h.examFor(chatID)
		chunks := splitMessage(renderReview(review), maxMessageLen)

		for i, chunk := range chunks {
			last := i == len(chunks)-1
			if i == 0 {
				edit := newEdit(chatID, msgID, chunk)
				if last {
					kb := buildResultKeyboard(examID)
					edit.ReplyMarkup = &kb
				}
				if err := h.send(edit); err != nil {
					return err
				}
				continue
			}

			msg := newMessage(chatID, chunk)
			if last {
				msg.ReplyMarkup = buildResultKeyboard(examID)
			}
			if err := h.send(msg); err != nil {
				return err
			}
		}

		h.quizService.Dismiss(chatID)
		return nil

	case entities.StateSubmissionFailed:
		h.logger.Warn("submission failed",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", snap.ID),
			zap.Error(err),
		)
		return h.send(newEditWithKeyboard(chatID, msgID, renderSubmitFailed(snap), buildRetryKeyboard(snap.ID)))

	default:
		if err != nil {
			return err
		}
		return h.send(newEdit(chatID, msgID, md(msgSubmitting)))
	}
}

// examFor returns the exam a follow-up daily drill should use.
func (h *Handler) examFor(chatID int64) string {
	if session, ok := h.quizService.Current(chatID); ok && session.ExamID != "" {
		return session.ExamID
	}
	return "general"
}

func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	h.request(tgbotapi.NewCallback(cb.ID, text))
}
