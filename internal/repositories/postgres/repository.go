package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

type repositoryManager struct {
	db        *gorm.DB
	forms     repositories.FormRepository
	responses repositories.ResponseRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repositoryManager{
		db:        db,
		forms:     NewFormPostgreSQL(db),
		responses: NewResponsePostgreSQL(db),
	}
}

func (r *repositoryManager) Form() repositories.FormRepository {
	return r.forms
}

func (r *repositoryManager) Response() repositories.ResponseRepository {
	return r.responses
}

func (r *repositoryManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *repositoryManager) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conn picks the transaction when one is given.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// applyPaginationAndSort applies pagination and sorting to a query. Unknown sort columns fall
// back to created_at so user input never reaches ORDER BY.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed map[string]bool) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).Order("id " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
