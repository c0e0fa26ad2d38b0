package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
	"gorm.io/gorm"
)

// Repository groups the form store. Every method takes an optional transaction; a nil tx
// runs against the shared connection.
type Repository interface {
	Form() FormRepository
	Response() ResponseRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	Status    *models.FormStatus `json:"status"`
	CreatedBy *string            `json:"created_by"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "updated_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	IsAnonymous *bool      `json:"is_anonymous"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"question_id"`
	Order      int  `json:"order"`
}

// IsNotFoundError reports whether err comes from a lookup that matched no row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
