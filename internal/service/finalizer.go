package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/metrics"
)

// Finalizer submits finished sessions for scoring.
type Finalizer struct {
	api     SubmissionAPI
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewFinalizer(api SubmissionAPI, m *metrics.Metrics, logger *zap.Logger) *Finalizer {
	return &Finalizer{api: api, metrics: m, logger: logger}
}

// Submit sends the session's responses and stores the returned analysis on
// the session. On failure the session moves to submission_failed with every
// captured response kept, so Submit can be called again.
func (f *Finalizer) Submit(ctx context.Context, session *entities.Session, accountID string) (*entities.Analysis, error) {
	payload, err := session.BeginSubmission(accountID)
	if err != nil {
		return nil, err
	}

	if accountID == "" {
		session.CompleteSubmission(nil, entities.ErrUnauthorized)
		return nil, entities.ErrUnauthorized
	}

	analysis, err := f.api.SubmitTest(ctx, payload)
	if err == nil && analysis == nil {
		err = fmt.Errorf("submit test %s: empty analysis: %w", payload.TestID, entities.ErrNetwork)
	}
	if err != nil && errors.Is(err, context.Canceled) {
		err = fmt.Errorf("submit test %s: %w: %v", payload.TestID, entities.ErrNetwork, err)
	}

	session.CompleteSubmission(analysis, err)
	f.metrics.Submission(err)

	if err != nil {
		f.logger.Warn("submission failed",
			zap.String("session_id", session.ID),
			zap.String("test_id", payload.TestID),
			zap.Int("responses", len(payload.Responses)),
			zap.Error(err),
		)
		return nil, err
	}

	f.logger.Info("submission accepted",
		zap.String("session_id", session.ID),
		zap.String("test_id", payload.TestID),
		zap.Float64("score", analysis.Summary.Score),
	)
	return analysis, nil
}
