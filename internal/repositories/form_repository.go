package repositories

import (
	"context"

	"github.com/SAP-F-2025/form-service/internal/models"
	"gorm.io/gorm"
)

// FormRepository interface for form definition operations
type FormRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, form *models.Form) error // Creates questions and options too
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) // Questions and options in order
	Update(ctx context.Context, tx *gorm.DB, form *models.Form) error                     // Form columns only
	Delete(ctx context.Context, tx *gorm.DB, id uint) error                               // Cascades to questions and responses

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters FormFilters) ([]*models.Form, int64, error)

	// Status management
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.FormStatus) error

	// Question management
	ReplaceQuestions(ctx context.Context, tx *gorm.DB, formID uint, questions []models.Question) error
	UpdateQuestionOrder(ctx context.Context, tx *gorm.DB, formID uint, orders []QuestionOrder) error
	UpdateOptions(ctx context.Context, tx *gorm.DB, question *models.Question) error // is_correct flags and correct_option_ids

	// Validation helpers
	HasResponses(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}
