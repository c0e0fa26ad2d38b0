package repositories

import (
	"context"

	"github.com/SAP-F-2025/form-service/internal/models"
	"gorm.io/gorm"
)

// ResponseRepository interface for submitted responses. Responses are append-only.
type ResponseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, response *models.Response) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Response, error)

	ListByForm(ctx context.Context, tx *gorm.DB, formID uint, filters ResponseFilters) ([]*models.Response, int64, error)
	// GetAllByFormWithAnswers returns the full snapshot used by analytics and export, with
	// each answer's question and options inlined.
	GetAllByFormWithAnswers(ctx context.Context, tx *gorm.DB, formID uint) ([]models.Response, error)

	CountByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error)
	ExistsByRespondentEmail(ctx context.Context, tx *gorm.DB, formID uint, email string) (bool, error)
	// LockRespondent blocks until no other transaction holds the (form, email) pair and keeps
	// it until tx ends. Call it before ExistsByRespondentEmail in the same transaction.
	LockRespondent(ctx context.Context, tx *gorm.DB, formID uint, email string) error
}
