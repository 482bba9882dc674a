package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// CatalogService serves the exam listing and the analytics dashboard.
type CatalogService struct {
	catalog   CatalogAPI
	analytics AnalyticsAPI
}

func NewCatalogService(catalog CatalogAPI, analytics AnalyticsAPI) *CatalogService {
	return &CatalogService{catalog: catalog, analytics: analytics}
}

func (s *CatalogService) Categories(ctx context.Context) ([]entities.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Exams lists the exams of a category sorted by name.
func (s *CatalogService) Exams(ctx context.Context, category string) ([]entities.Exam, error) {
	exams, err := s.catalog.ListExams(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	sort.SliceStable(exams, func(i, j int) bool { return exams[i].Name < exams[j].Name })
	return exams, nil
}

func (s *CatalogService) Exam(ctx context.Context, examID string) (*entities.Exam, error) {
	exam, err := s.catalog.GetExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam %s: %w", examID, err)
	}
	return exam, nil
}

// Dashboard returns the analytics overview of an account.
func (s *CatalogService) Dashboard(ctx context.Context, accountID string) (*entities.Dashboard, error) {
	if accountID == "" {
		return nil, entities.ErrUnauthorized
	}

	d, err := s.analytics.GetDashboard(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}
	return d, nil
}
