package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/metrics"
)

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

type tokenKey struct{}

// ContextWithToken attaches the bearer token used by requests made with ctx.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached to ctx, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// StatusError is returned for non-2xx responses. It unwraps to one of the
// entities transport errors.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return classifyStatus(e.Status)
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return entities.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return entities.ErrUnauthorized
	case status >= 400 && status < 500:
		return entities.ErrValidation
	default:
		return entities.ErrNetwork
	}
}

// Client talks to the exam-prep REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
	}
}

// do sends a JSON request and decodes a JSON response into out.
// endpoint is the route template used as the metrics label.
func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(method, endpoint, 0, started)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s %s: %w: %v", method, endpoint, entities.ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveAPI(method, endpoint, resp.StatusCode, started)

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", b),
		)
		return &StatusError{Op: method + " " + endpoint, Status: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s response: %w: %v", endpoint, entities.ErrNetwork, err)
	}
	return nil
}
