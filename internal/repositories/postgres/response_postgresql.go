package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// Create stores a response and its answers
func (r *ResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	if err := conn(ctx, r.db, tx).Omit("Form").Create(response).Error; err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Response, error) {
	var response models.Response
	err := conn(ctx, r.db, tx).
		Preload("Answers").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByForm retrieves a page of responses, newest first
func (r *ResponsePostgreSQL) ListByForm(ctx context.Context, tx *gorm.DB, formID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	query := conn(ctx, r.db, tx).Model(&models.Response{}).Where("form_id = ?", formID)

	if filters.IsAnonymous != nil {
		query = query.Where("is_anonymous = ?", *filters.IsAnonymous)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var responses []*models.Response
	err := query.
		Preload("Answers").
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&responses).Error
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// GetAllByFormWithAnswers loads the whole response snapshot of a form in submission order
func (r *ResponsePostgreSQL) GetAllByFormWithAnswers(ctx context.Context, tx *gorm.DB, formID uint) ([]models.Response, error) {
	var responses []models.Response
	err := conn(ctx, r.db, tx).
		Where("form_id = ?", formID).
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Answers.Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Order("submitted_at ASC").
		Order("id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) CountByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&models.Response{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

func (r *ResponsePostgreSQL) ExistsByRespondentEmail(ctx context.Context, tx *gorm.DB, formID uint, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&models.Response{}).
		Where("form_id = ? AND LOWER(respondent_email) = LOWER(?)", formID, email).
		Count(&count).Error
	return count > 0, err
}

// LockRespondent takes a transaction-scoped advisory lock, so it must run inside tx.
func (r *ResponsePostgreSQL) LockRespondent(ctx context.Context, tx *gorm.DB, formID uint, email string) error {
	return conn(ctx, r.db, tx).
		Exec("SELECT pg_advisory_xact_lock(?::int, hashtext(LOWER(?)))", formID, email).Error
}
