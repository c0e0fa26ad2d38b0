package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
)

// AnalyticsService provides per-question summaries of a form's responses
type AnalyticsService interface {
	GetFormAnalytics(ctx context.Context, formID uint) (*FormAnalytics, error)
	GetQuestionAnalytics(ctx context.Context, formID, questionID uint) (*QuestionSummary, error)
}

type analyticsService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	aggregator *ResponseAggregator
	cache      *cache.AnalyticsCache
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger, analytics *cache.AnalyticsCache) AnalyticsService {
	svcLogger := NewServiceLogger(logger, LogConfig{Service: "form-service", Component: "analytics"})
	return &analyticsService{
		repo:       repo,
		logger:     logger,
		aggregator: NewResponseAggregator(svcLogger),
		cache:      analytics,
	}
}

// GetFormAnalytics serves the cached summary for the current response count, aggregating on a miss.
// Cache failures degrade to a fresh aggregation.
func (s *analyticsService) GetFormAnalytics(ctx context.Context, formID uint) (*FormAnalytics, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, nil, formID)
	if err != nil {
		return nil, mapFormError(err)
	}

	count := int64(form.ResponseCount)
	if s.cache != nil {
		var cached FormAnalytics
		hit, err := s.cache.Get(ctx, formID, count, &cached)
		if err != nil {
			s.logger.Warn("Failed to read analytics cache", "form_id", formID, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	responses, err := s.repo.Response().GetAllByFormWithAnswers(ctx, nil, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	analytics := s.aggregator.AggregateForm(ctx, form, responses)

	if s.cache != nil {
		if err := s.cache.Set(ctx, formID, int64(len(responses)), analytics); err != nil {
			s.logger.Warn("Failed to store analytics cache", "form_id", formID, "error", err)
		}
	}
	return analytics, nil
}

func (s *analyticsService) GetQuestionAnalytics(ctx context.Context, formID, questionID uint) (*QuestionSummary, error) {
	analytics, err := s.GetFormAnalytics(ctx, formID)
	if err != nil {
		return nil, err
	}
	for i := range analytics.Questions {
		if analytics.Questions[i].QuestionID == questionID {
			return &analytics.Questions[i], nil
		}
	}
	return nil, ErrQuestionNotFound
}

// loadSnapshot returns the form with its questions and every response, for read-side consumers.
func loadSnapshot(ctx context.Context, repo repositories.Repository, formID uint) (*models.Form, []models.Response, error) {
	form, err := repo.Form().GetByIDWithQuestions(ctx, nil, formID)
	if err != nil {
		return nil, nil, mapFormError(err)
	}
	responses, err := repo.Response().GetAllByFormWithAnswers(ctx, nil, formID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return form, responses, nil
}
