package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// ListExams returns all exams, optionally filtered by category.
func (c *Client) ListExams(ctx context.Context, category string) ([]entities.Exam, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": {category}}
	}

	var out []entities.Exam
	if err := c.do(ctx, http.MethodGet, "/exams", "/exams", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCategories returns the exam categories.
func (c *Client) ListCategories(ctx context.Context) ([]entities.Category, error) {
	var out []entities.Category
	if err := c.do(ctx, http.MethodGet, "/categories", "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetExam fetches a single exam.
func (c *Client) GetExam(ctx context.Context, examID string) (*entities.Exam, error) {
	var out *entities.Exam
	if err := c.do(ctx, http.MethodGet, "/exams/{id}", "/exams/"+url.PathEscape(examID), nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil || out.ID == "" {
		return nil, entities.ErrNotFound
	}
	return out, nil
}

// GetDashboard returns the analytics overview of an account.
func (c *Client) GetDashboard(ctx context.Context, accountID string) (*entities.Dashboard, error) {
	query := url.Values{"userId": {accountID}}

	var out *entities.Dashboard
	if err := c.do(ctx, http.MethodGet, "/analytics/dashboard", "/analytics/dashboard", query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, entities.ErrNotFound
	}
	return out, nil
}
