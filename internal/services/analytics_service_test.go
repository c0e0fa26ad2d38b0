package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAnalyticsCache(t *testing.T) (*cache.AnalyticsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewAnalyticsCache(cache.NewRedisCache(client, discardLogger()), time.Minute), mr
}

func analyticsSnapshot() (*models.Form, []models.Response) {
	form := newForm(capitalQuestion(1, 0), ratingQuestion(2, 1))
	responses := []models.Response{
		responseWith(1, choiceAnswer(1, "paris"), ratingAnswer(2, 5)),
		responseWith(2, choiceAnswer(1, "london"), ratingAnswer(2, 4)),
	}
	responses[1].IsAnonymous = false
	form.ResponseCount = len(responses)
	return form, responses
}

func TestAnalyticsService_GetFormAnalytics(t *testing.T) {
	repo := newMockRepository()
	form, responses := analyticsSnapshot()
	repo.forms.On("GetByIDWithQuestions", mock.Anything, mock.Anything, uint(7)).Return(form, nil)
	repo.responses.On("GetAllByFormWithAnswers", mock.Anything, mock.Anything, uint(7)).Return(responses, nil)

	svc := NewAnalyticsService(repo, discardLogger(), nil)
	analytics, err := svc.GetFormAnalytics(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), analytics.FormID)
	assert.Equal(t, "Course feedback", analytics.Title)
	assert.Equal(t, 2, analytics.TotalResponses)
	assert.Equal(t, 1, analytics.AnonymousResponses)
	require.Len(t, analytics.Questions, 2)
	assert.Equal(t, 4.5, analytics.Questions[1].Rating.Average)
}

func TestAnalyticsService_UsesCacheUntilResponseCountChanges(t *testing.T) {
	analyticsCache, mr := newAnalyticsCache(t)
	repo := newMockRepository()
	form, responses := analyticsSnapshot()
	repo.forms.On("GetByIDWithQuestions", mock.Anything, mock.Anything, uint(7)).Return(form, nil)
	repo.responses.On("GetAllByFormWithAnswers", mock.Anything, mock.Anything, uint(7)).Return(responses, nil)

	svc := NewAnalyticsService(repo, discardLogger(), analyticsCache)
	ctx := context.Background()

	first, err := svc.GetFormAnalytics(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists("forms:7:analytics:2"))

	second, err := svc.GetFormAnalytics(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first.TotalResponses, second.TotalResponses)
	assert.Equal(t, first.Questions[1].Rating.Average, second.Questions[1].Rating.Average)
	repo.responses.AssertNumberOfCalls(t, "GetAllByFormWithAnswers", 1)

	form.ResponseCount = 3
	_, err = svc.GetFormAnalytics(ctx, 7)
	require.NoError(t, err)
	repo.responses.AssertNumberOfCalls(t, "GetAllByFormWithAnswers", 2)
}

func TestAnalyticsService_CacheOutageFallsBack(t *testing.T) {
	analyticsCache, mr := newAnalyticsCache(t)
	mr.Close()

	repo := newMockRepository()
	form, responses := analyticsSnapshot()
	repo.forms.On("GetByIDWithQuestions", mock.Anything, mock.Anything, uint(7)).Return(form, nil)
	repo.responses.On("GetAllByFormWithAnswers", mock.Anything, mock.Anything, uint(7)).Return(responses, nil)

	svc := NewAnalyticsService(repo, discardLogger(), analyticsCache)
	analytics, err := svc.GetFormAnalytics(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.TotalResponses)
}

func TestAnalyticsService_GetQuestionAnalytics(t *testing.T) {
	repo := newMockRepository()
	form, responses := analyticsSnapshot()
	repo.forms.On("GetByIDWithQuestions", mock.Anything, mock.Anything, uint(7)).Return(form, nil)
	repo.forms.On("GetByIDWithQuestions", mock.Anything, mock.Anything, uint(8)).Return(nil, gorm.ErrRecordNotFound)
	repo.responses.On("GetAllByFormWithAnswers", mock.Anything, mock.Anything, uint(7)).Return(responses, nil)

	svc := NewAnalyticsService(repo, discardLogger(), nil)

	summary, err := svc.GetQuestionAnalytics(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SummaryOptions, summary.Kind)

	_, err = svc.GetQuestionAnalytics(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = svc.GetFormAnalytics(context.Background(), 8)
	assert.ErrorIs(t, err, ErrFormNotFound)
}
