package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/SAP-F-2025/form-service/internal/auth"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockFormService struct{ mock.Mock }

func (m *MockFormService) Create(ctx context.Context, req *services.CreateFormRequest, creatorID string) (*models.Form, error) {
	args := m.Called(ctx, req, creatorID)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) GetByID(ctx context.Context, id uint) (*models.Form, error) {
	args := m.Called(ctx, id)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) List(ctx context.Context, filters repositories.FormFilters) (*services.FormListResponse, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).(*services.FormListResponse)
	return list, args.Error(1)
}

func (m *MockFormService) Update(ctx context.Context, id uint, req *services.UpdateFormRequest, userID string) (*models.Form, error) {
	args := m.Called(ctx, id, req, userID)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) Delete(ctx context.Context, id uint, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockFormService) UpdateStatus(ctx context.Context, id uint, status models.FormStatus, userID string) (*models.Form, error) {
	args := m.Called(ctx, id, status, userID)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) ReorderQuestions(ctx context.Context, id uint, questionIDs []uint, userID string) (*models.Form, error) {
	args := m.Called(ctx, id, questionIDs, userID)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormService) SetCorrectOption(ctx context.Context, formID, questionID uint, optionValue string, correct bool, userID string) (*models.Question, error) {
	args := m.Called(ctx, formID, questionID, optionValue, correct, userID)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockFormService) ValidateDefinition(ctx context.Context, req *services.CreateFormRequest) (*services.DefinitionReport, error) {
	args := m.Called(ctx, req)
	report, _ := args.Get(0).(*services.DefinitionReport)
	return report, args.Error(1)
}

type MockResponseService struct{ mock.Mock }

func (m *MockResponseService) Submit(ctx context.Context, formID uint, req *services.SubmitResponseRequest, respondent *services.Respondent) (*models.Response, error) {
	args := m.Called(ctx, formID, req, respondent)
	response, _ := args.Get(0).(*models.Response)
	return response, args.Error(1)
}

func (m *MockResponseService) ListByForm(ctx context.Context, formID uint, filters repositories.ResponseFilters) (*services.ResponseListResponse, error) {
	args := m.Called(ctx, formID, filters)
	list, _ := args.Get(0).(*services.ResponseListResponse)
	return list, args.Error(1)
}

func (m *MockResponseService) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	args := m.Called(ctx, id)
	response, _ := args.Get(0).(*models.Response)
	return response, args.Error(1)
}

type MockAnalyticsService struct{ mock.Mock }

func (m *MockAnalyticsService) GetFormAnalytics(ctx context.Context, formID uint) (*services.FormAnalytics, error) {
	args := m.Called(ctx, formID)
	analytics, _ := args.Get(0).(*services.FormAnalytics)
	return analytics, args.Error(1)
}

func (m *MockAnalyticsService) GetQuestionAnalytics(ctx context.Context, formID, questionID uint) (*services.QuestionSummary, error) {
	args := m.Called(ctx, formID, questionID)
	summary, _ := args.Get(0).(*services.QuestionSummary)
	return summary, args.Error(1)
}

type MockExportService struct{ mock.Mock }

func (m *MockExportService) Export(ctx context.Context, formID uint, format services.ExportFormat) (*services.ExportFile, error) {
	args := m.Called(ctx, formID, format)
	file, _ := args.Get(0).(*services.ExportFile)
	return file, args.Error(1)
}

type mockServiceManager struct {
	forms     *MockFormService
	responses *MockResponseService
	analytics *MockAnalyticsService
	exports   *MockExportService
}

func (m *mockServiceManager) Form() services.FormService           { return m.forms }
func (m *mockServiceManager) Response() services.ResponseService   { return m.responses }
func (m *mockServiceManager) Analytics() services.AnalyticsService { return m.analytics }
func (m *mockServiceManager) Export() services.ExportService       { return m.exports }

func newTestServer(parser auth.TokenParser) (*gin.Engine, *mockServiceManager) {
	gin.SetMode(gin.TestMode)
	manager := &mockServiceManager{
		forms:     &MockFormService{},
		responses: &MockResponseService{},
		analytics: &MockAnalyticsService{},
		exports:   &MockExportService{},
	}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	NewHandlerManager(manager, validator.New(), parser, logger).SetupRoutes(router)
	return router, manager
}

func performRequest(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
