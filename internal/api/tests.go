package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// TestRecord is a test as returned by the API. Question entries are kept raw
// because the backend sends them either inline or wrapped in a reference.
type TestRecord struct {
	ID        string            `json:"_id"`
	ExamID    string            `json:"examId"`
	Title     string            `json:"title"`
	Topic     string            `json:"topic"`
	Questions []json.RawMessage `json:"questions"`
}

// GenerateRequest asks the backend to assemble a test.
type GenerateRequest struct {
	ExamID     string `json:"examId,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Count      int    `json:"count,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

type generateResponse struct {
	TestID string `json:"testId"`
}

type submitResponse struct {
	Analysis *entities.Analysis `json:"analysis"`
}

// GetTest fetches a test by id. A null body yields a nil record.
func (c *Client) GetTest(ctx context.Context, testID string) (*TestRecord, error) {
	var out *TestRecord
	err := c.do(ctx, http.MethodGet, "/tests/{id}", "/tests/"+url.PathEscape(testID), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetDailyTest fetches today's drill for an exam.
func (c *Client) GetDailyTest(ctx context.Context, examID string) (*TestRecord, error) {
	var out *TestRecord
	err := c.do(ctx, http.MethodGet, "/tests/daily/{examId}", "/tests/daily/"+url.PathEscape(examID), nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateTest creates a test on the server and returns its id.
func (c *Client) GenerateTest(ctx context.Context, req GenerateRequest) (string, error) {
	var out generateResponse
	if err := c.do(ctx, http.MethodPost, "/tests/generate", "/tests/generate", nil, req, &out); err != nil {
		return "", err
	}
	if out.TestID == "" {
		return "", entities.ErrNotFound
	}
	return out.TestID, nil
}

// SubmitTest sends a finished attempt and returns the server analysis.
// Older backends return the analysis at the top level instead of under
// "analysis"; both are accepted.
func (c *Client) SubmitTest(ctx context.Context, payload entities.SubmissionPayload) (*entities.Analysis, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/tests/submit", "/tests/submit", nil, payload, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("submit: empty response: %w", entities.ErrNetwork)
	}

	var wrapped submitResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	if wrapped.Analysis != nil {
		return wrapped.Analysis, nil
	}

	var bare entities.Analysis
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &bare, nil
}
