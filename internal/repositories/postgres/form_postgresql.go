package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

var formSortColumns = map[string]bool{"created_at": true, "updated_at": true, "title": true}

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

// Create inserts the form together with its questions and options
func (f *FormPostgreSQL) Create(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	if err := conn(ctx, f.db, tx).Create(form).Error; err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// GetByID retrieves a form without its questions
func (f *FormPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) {
	var form models.Form
	if err := conn(ctx, f.db, tx).First(&form, id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// GetByIDWithQuestions retrieves a form with questions and options sorted by order_index
func (f *FormPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) {
	var form models.Form
	err := conn(ctx, f.db, tx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&form, id).Error
	if err != nil {
		return nil, err
	}

	count, err := f.countResponses(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	form.ResponseCount = int(count)

	return &form, nil
}

// Update saves the form's own columns; questions are handled by ReplaceQuestions
func (f *FormPostgreSQL) Update(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	form.UpdatedAt = time.Now()
	err := conn(ctx, f.db, tx).
		Model(form).
		Select("*").
		Omit("id", "created_by", "created_at", "Questions").
		Updates(form).Error
	if err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	return nil
}

// Delete removes a form; questions, options and responses cascade
func (f *FormPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := conn(ctx, f.db, tx).Delete(&models.Form{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves forms with filters and pagination
func (f *FormPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	query := conn(ctx, f.db, tx).Model(&models.Form{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		searchQuery := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchQuery, searchQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, formSortColumns)

	var forms []*models.Form
	if err := query.Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	if err := f.fillResponseCounts(ctx, tx, forms); err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

// UpdateStatus updates the status of a form
func (f *FormPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.FormStatus) error {
	result := conn(ctx, f.db, tx).
		Model(&models.Form{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceQuestions makes the stored question list equal to questions. Questions without an ID
// are inserted, the rest are updated in place, and stored questions missing from the list are
// deleted. Options are rewritten for every question.
func (f *FormPostgreSQL) ReplaceQuestions(ctx context.Context, tx *gorm.DB, formID uint, questions []models.Question) error {
	db := conn(ctx, f.db, tx)

	keep := make([]uint, 0, len(questions))
	for _, q := range questions {
		if q.ID != 0 {
			keep = append(keep, q.ID)
		}
	}

	remove := db.Where("form_id = ?", formID)
	if len(keep) > 0 {
		remove = remove.Where("id NOT IN ?", keep)
	}
	if err := remove.Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to remove questions: %w", err)
	}

	if err := parkOrderIndexes(db, formID); err != nil {
		return err
	}

	for i := range questions {
		q := &questions[i]
		q.FormID = formID

		if q.ID == 0 {
			if err := db.Omit("Options").Create(q).Error; err != nil {
				return fmt.Errorf("failed to create question %d: %w", i, err)
			}
		} else {
			q.UpdatedAt = time.Now()
			err := db.Model(q).
				Select("*").
				Omit("id", "form_id", "created_at", "Options").
				Updates(q).Error
			if err != nil {
				return fmt.Errorf("failed to update question %d: %w", q.ID, err)
			}
		}

		if err := replaceOptions(db, q); err != nil {
			return err
		}
	}
	return nil
}

// UpdateQuestionOrder rewrites every order_index of a form
func (f *FormPostgreSQL) UpdateQuestionOrder(ctx context.Context, tx *gorm.DB, formID uint, orders []repositories.QuestionOrder) error {
	db := conn(ctx, f.db, tx)

	if err := parkOrderIndexes(db, formID); err != nil {
		return err
	}
	for _, o := range orders {
		result := db.Model(&models.Question{}).
			Where("id = ? AND form_id = ?", o.QuestionID, formID).
			Update("order_index", o.Order)
		if result.Error != nil {
			return fmt.Errorf("failed to reorder question %d: %w", o.QuestionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// UpdateOptions persists the correctness flags of a question's options
func (f *FormPostgreSQL) UpdateOptions(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := conn(ctx, f.db, tx)

	for _, opt := range question.Options {
		err := db.Model(&models.QuestionOption{}).
			Where("id = ? AND question_id = ?", opt.ID, question.ID).
			Update("is_correct", opt.IsCorrect).Error
		if err != nil {
			return fmt.Errorf("failed to update option %d: %w", opt.ID, err)
		}
	}

	return db.Model(&models.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"correct_option_ids": question.CorrectOptionIDs,
			"updated_at":         time.Now(),
		}).Error
}

// HasResponses checks whether any response was submitted against the form
func (f *FormPostgreSQL) HasResponses(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	count, err := f.countResponses(ctx, tx, id)
	return count > 0, err
}

func (f *FormPostgreSQL) countResponses(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	var count int64
	err := conn(ctx, f.db, tx).
		Model(&models.Response{}).
		Where("form_id = ?", id).
		Count(&count).Error
	return count, err
}

func (f *FormPostgreSQL) fillResponseCounts(ctx context.Context, tx *gorm.DB, forms []*models.Form) error {
	if len(forms) == 0 {
		return nil
	}

	ids := make([]uint, len(forms))
	for i, form := range forms {
		ids[i] = form.ID
	}

	var rows []struct {
		FormID uint
		Total  int
	}
	err := conn(ctx, f.db, tx).
		Model(&models.Response{}).
		Select("form_id, COUNT(*) AS total").
		Where("form_id IN ?", ids).
		Group("form_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to count responses: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.FormID] = row.Total
	}
	for _, form := range forms {
		form.ResponseCount = counts[form.ID]
	}
	return nil
}

// parkOrderIndexes moves every question of the form to a negative index so the new
// permutation can be written without tripping the (form_id, order_index) unique index.
func parkOrderIndexes(db *gorm.DB, formID uint) error {
	err := db.Model(&models.Question{}).
		Where("form_id = ?", formID).
		Update("order_index", gorm.Expr("-(order_index + 1)")).Error
	if err != nil {
		return fmt.Errorf("failed to park question order: %w", err)
	}
	return nil
}

func replaceOptions(db *gorm.DB, q *models.Question) error {
	if err := db.Where("question_id = ?", q.ID).Delete(&models.QuestionOption{}).Error; err != nil {
		return fmt.Errorf("failed to clear options of question %d: %w", q.ID, err)
	}
	if len(q.Options) == 0 {
		return nil
	}

	for i := range q.Options {
		q.Options[i].ID = 0
		q.Options[i].QuestionID = q.ID
	}
	if err := db.Create(&q.Options).Error; err != nil {
		return fmt.Errorf("failed to create options of question %d: %w", q.ID, err)
	}
	return nil
}
