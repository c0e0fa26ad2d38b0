package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository runs transactional callbacks inline with a nil tx
type MockRepository struct {
	forms     *MockFormRepository
	responses *MockResponseRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		forms:     &MockFormRepository{},
		responses: &MockResponseRepository{},
	}
}

func (m *MockRepository) Form() repositories.FormRepository         { return m.forms }
func (m *MockRepository) Response() repositories.ResponseRepository { return m.responses }
func (m *MockRepository) Ping(ctx context.Context) error             { return nil }
func (m *MockRepository) Close() error                               { return nil }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// MockFormRepository is a mock implementation of FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	args := m.Called(ctx, tx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) {
	args := m.Called(ctx, tx, id)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormRepository) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) {
	args := m.Called(ctx, tx, id)
	form, _ := args.Get(0).(*models.Form)
	return form, args.Error(1)
}

func (m *MockFormRepository) Update(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	args := m.Called(ctx, tx, form)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockFormRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	args := m.Called(ctx, tx, filters)
	forms, _ := args.Get(0).([]*models.Form)
	return forms, args.Get(1).(int64), args.Error(2)
}

func (m *MockFormRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.FormStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockFormRepository) ReplaceQuestions(ctx context.Context, tx *gorm.DB, formID uint, questions []models.Question) error {
	args := m.Called(ctx, tx, formID, questions)
	return args.Error(0)
}

func (m *MockFormRepository) UpdateQuestionOrder(ctx context.Context, tx *gorm.DB, formID uint, orders []repositories.QuestionOrder) error {
	args := m.Called(ctx, tx, formID, orders)
	return args.Error(0)
}

func (m *MockFormRepository) UpdateOptions(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	args := m.Called(ctx, tx, question)
	return args.Error(0)
}

func (m *MockFormRepository) HasResponses(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Response, error) {
	args := m.Called(ctx, tx, id)
	response, _ := args.Get(0).(*models.Response)
	return response, args.Error(1)
}

func (m *MockResponseRepository) ListByForm(ctx context.Context, tx *gorm.DB, formID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	args := m.Called(ctx, tx, formID, filters)
	responses, _ := args.Get(0).([]*models.Response)
	return responses, args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) GetAllByFormWithAnswers(ctx context.Context, tx *gorm.DB, formID uint) ([]models.Response, error) {
	args := m.Called(ctx, tx, formID)
	responses, _ := args.Get(0).([]models.Response)
	return responses, args.Error(1)
}

func (m *MockResponseRepository) CountByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error) {
	args := m.Called(ctx, tx, formID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) ExistsByRespondentEmail(ctx context.Context, tx *gorm.DB, formID uint, email string) (bool, error) {
	args := m.Called(ctx, tx, formID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockResponseRepository) LockRespondent(ctx context.Context, tx *gorm.DB, formID uint, email string) error {
	args := m.Called(ctx, tx, formID, email)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
