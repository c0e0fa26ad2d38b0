package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SAP-F-2025/form-service/internal/cache"
	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultGridSize  = 10
)

// FormService manages form definitions and their lifecycle
type FormService interface {
	Create(ctx context.Context, req *CreateFormRequest, creatorID string) (*models.Form, error)
	GetByID(ctx context.Context, id uint) (*models.Form, error)
	List(ctx context.Context, filters repositories.FormFilters) (*FormListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateFormRequest, userID string) (*models.Form, error)
	Delete(ctx context.Context, id uint, userID string) error

	UpdateStatus(ctx context.Context, id uint, status models.FormStatus, userID string) (*models.Form, error)
	ReorderQuestions(ctx context.Context, id uint, questionIDs []uint, userID string) (*models.Form, error)
	SetCorrectOption(ctx context.Context, formID, questionID uint, optionValue string, correct bool, userID string) (*models.Question, error)

	// ValidateDefinition compiles a definition without saving it
	ValidateDefinition(ctx context.Context, req *CreateFormRequest) (*DefinitionReport, error)
}

type formService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
	analytics *cache.AnalyticsCache
	publisher events.EventPublisher
}

func NewFormService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	analytics *cache.AnalyticsCache,
	publisher events.EventPublisher,
) FormService {
	return &formService{
		repo:      repo,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "form-service", Component: "forms"}),
		validator: validator,
		analytics: analytics,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *formService) Create(ctx context.Context, req *CreateFormRequest, creatorID string) (form *models.Form, err error) {
	op := s.svcLogger.WithOperation(ctx, "create_form", creatorID)
	defer func() { op.LogResult(formIDOf(form), "form", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	form = buildForm(req)
	form.CreatedBy = creatorID
	switch form.Status {
	case "":
		form.Status = models.FormDraft
	case models.FormDraft, models.FormPublished:
	default:
		return nil, ValidationErrors{*NewValidationError("status", "new forms must be draft or published", form.Status)}
	}

	if _, err := s.validator.Schema().CompileForm(form); err != nil {
		return nil, err
	}
	if form.Status == models.FormPublished {
		if err := checkPublishable(form); err != nil {
			return nil, err
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Form().Create(ctx, tx, form); err != nil {
			return err
		}
		created, err := s.repo.Form().GetByIDWithQuestions(ctx, tx, form.ID)
		if err != nil {
			return fmt.Errorf("failed to reload form: %w", err)
		}
		form = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if form.Status == models.FormPublished {
		s.publishStatusChange(ctx, form, models.FormDraft, creatorID)
	}
	return form, nil
}

func (s *formService) GetByID(ctx context.Context, id uint) (*models.Form, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		return nil, mapFormError(err)
	}
	return form, nil
}

func (s *formService) List(ctx context.Context, filters repositories.FormFilters) (*FormListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)
	filters.Search = strings.TrimSpace(filters.Search)
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, ValidationErrors{*NewValidationError("status", "must be a valid form status (draft, published, closed, archived)", *filters.Status)}
	}

	forms, total, err := s.repo.Form().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	return &FormListResponse{
		Forms:  forms,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *formService) Update(ctx context.Context, id uint, req *UpdateFormRequest, userID string) (form *models.Form, err error) {
	op := s.svcLogger.WithOperation(ctx, "update_form", userID)
	defer func() { op.LogResult(id, "form", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var previousStatus models.FormStatus
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.Form().GetByIDWithQuestions(ctx, tx, id)
		if err != nil {
			return mapFormError(err)
		}
		if existing.Status == models.FormArchived {
			return ErrFormNotEditable
		}
		previousStatus = existing.Status

		next := buildForm((*CreateFormRequest)(req))
		next.ID = existing.ID
		next.CreatedBy = existing.CreatedBy
		next.CreatedAt = existing.CreatedAt
		if next.Status == "" {
			next.Status = existing.Status
		}
		if next.Status != existing.Status && !existing.Status.CanTransitionTo(next.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, existing.Status, next.Status)
		}

		if err := s.checkQuestionEdits(ctx, existing, next); err != nil {
			return err
		}
		if _, err := s.validator.Schema().CompileForm(next); err != nil {
			return err
		}
		if next.Status == models.FormPublished {
			if err := checkPublishable(next); err != nil {
				return err
			}
		}

		if err := s.repo.Form().Update(ctx, tx, next); err != nil {
			return err
		}
		if err := s.repo.Form().ReplaceQuestions(ctx, tx, id, next.Questions); err != nil {
			return err
		}

		form, err = s.repo.Form().GetByIDWithQuestions(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to reload form: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, id)
	if form.Status != previousStatus {
		s.publishStatusChange(ctx, form, previousStatus, userID)
	}
	return form, nil
}

func (s *formService) Delete(ctx context.Context, id uint, userID string) (err error) {
	op := s.svcLogger.WithOperation(ctx, "delete_form", userID)
	defer func() { op.LogResult(id, "form", err) }()

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Form().GetByID(ctx, tx, id); err != nil {
			return mapFormError(err)
		}
		return s.repo.Form().Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateAnalytics(ctx, id)
	return nil
}

// ===== LIFECYCLE =====

func (s *formService) UpdateStatus(ctx context.Context, id uint, status models.FormStatus, userID string) (form *models.Form, err error) {
	op := s.svcLogger.WithOperation(ctx, "update_form_status", userID)
	defer func() { op.LogResult(id, "form", err) }()

	if err := s.validator.Validate(&UpdateStatusRequest{Status: status}); err != nil {
		return nil, err
	}

	var previousStatus models.FormStatus
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.Form().GetByIDWithQuestions(ctx, tx, id)
		if err != nil {
			return mapFormError(err)
		}
		if !existing.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, existing.Status, status)
		}
		if status == models.FormPublished {
			if err := checkPublishable(existing); err != nil {
				return err
			}
			if _, err := s.validator.Schema().CompileForm(existing); err != nil {
				return err
			}
		}

		if err := s.repo.Form().UpdateStatus(ctx, tx, id, status); err != nil {
			return err
		}
		previousStatus = existing.Status
		existing.Status = status
		form = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, form, previousStatus, userID)
	return form, nil
}

func (s *formService) ReorderQuestions(ctx context.Context, id uint, questionIDs []uint, userID string) (form *models.Form, err error) {
	op := s.svcLogger.WithOperation(ctx, "reorder_questions", userID)
	defer func() { op.LogResult(id, "form", err) }()

	if err := s.validator.Validate(&ReorderQuestionsRequest{QuestionIDs: questionIDs}); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.Form().GetByIDWithQuestions(ctx, tx, id)
		if err != nil {
			return mapFormError(err)
		}
		if existing.Status == models.FormArchived {
			return ErrFormNotEditable
		}

		if err := existing.ReorderQuestions(questionIDs); err != nil {
			return ValidationErrors{*NewValidationError("question_ids", err.Error(), questionIDs)}
		}

		orders := make([]repositories.QuestionOrder, len(existing.Questions))
		for i, q := range existing.Questions {
			orders[i] = repositories.QuestionOrder{QuestionID: q.ID, Order: q.OrderIndex}
		}
		if err := s.repo.Form().UpdateQuestionOrder(ctx, tx, id, orders); err != nil {
			return err
		}
		form = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, id)
	return form, nil
}

func (s *formService) SetCorrectOption(ctx context.Context, formID, questionID uint, optionValue string, correct bool, userID string) (question *models.Question, err error) {
	op := s.svcLogger.WithOperation(ctx, "set_correct_option", userID)
	defer func() { op.LogResult(questionID, "question", err) }()

	if err := s.validator.Validate(&SetCorrectOptionRequest{OptionValue: optionValue, IsCorrect: correct}); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		form, err := s.repo.Form().GetByIDWithQuestions(ctx, tx, formID)
		if err != nil {
			return mapFormError(err)
		}
		if form.Status == models.FormArchived {
			return ErrFormNotEditable
		}

		q, ok := form.FindQuestion(questionID)
		if !ok {
			return ErrQuestionNotFound
		}
		if err := q.SetOptionCorrect(optionValue, correct); err != nil {
			switch {
			case errors.Is(err, models.ErrNoOptions):
				return NewBusinessRuleError("options_required", err.Error(), map[string]interface{}{"question_type": q.QuestionType})
			case errors.Is(err, models.ErrOptionNotFound):
				return ValidationErrors{*NewValidationError("option_value", "is not an option of this question", optionValue)}
			}
			return err
		}

		if err := s.repo.Form().UpdateOptions(ctx, tx, q); err != nil {
			return err
		}
		question = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *formService) ValidateDefinition(ctx context.Context, req *CreateFormRequest) (*DefinitionReport, error) {
	if err := s.validator.Validate(req); err != nil {
		var issues ValidationErrors
		if errors.As(err, &issues) {
			return &DefinitionReport{Valid: false, Issues: issues}, nil
		}
		return nil, err
	}

	form := buildForm(req)
	if form.Status == "" {
		form.Status = models.FormDraft
	}

	schema, err := s.validator.Schema().CompileForm(form)
	if err != nil {
		var definitionErr *apperrors.InvalidDefinitionError
		if errors.As(err, &definitionErr) {
			return &DefinitionReport{Valid: false, Issues: definitionErr.Issues}, nil
		}
		return nil, err
	}

	return &DefinitionReport{Valid: true, Questions: ruleReport(schema)}, nil
}

// ===== HELPERS =====

// checkQuestionEdits enforces the rules for editing a form that already holds responses:
// questions and choice options that answers may point at cannot disappear.
func (s *formService) checkQuestionEdits(ctx context.Context, existing, next *models.Form) error {
	persisted := make(map[uint]*models.Question, len(existing.Questions))
	for i := range existing.Questions {
		persisted[existing.Questions[i].ID] = &existing.Questions[i]
	}

	var issues ValidationErrors
	kept := make(map[uint]*models.Question, len(next.Questions))
	for i := range next.Questions {
		q := &next.Questions[i]
		if q.ID == 0 {
			continue
		}
		if _, ok := persisted[q.ID]; !ok {
			issues = append(issues, *NewValidationError(fmt.Sprintf("questions[%d].id", i), "does not belong to this form", q.ID))
			continue
		}
		kept[q.ID] = q
	}
	if len(issues) > 0 {
		return issues
	}

	if existing.ResponseCount == 0 {
		return nil
	}

	for id, old := range persisted {
		q, ok := kept[id]
		if !ok {
			return fmt.Errorf("%w: question %d cannot be removed", ErrFormHasResponses, id)
		}
		if q.QuestionType != old.QuestionType {
			s.logger.Warn("Question type changed on a form with responses",
				"form_id", existing.ID, "question_id", id,
				"previous_type", old.QuestionType, "question_type", q.QuestionType)
		}
		if !old.Requirements().NeedsOptions || !q.Requirements().NeedsOptions {
			continue
		}
		for _, opt := range old.Options {
			if _, ok := q.OptionByValue(opt.OptionValue); !ok {
				return fmt.Errorf("%w: option %q of question %d cannot be removed", ErrFormHasResponses, opt.OptionValue, id)
			}
		}
	}
	return nil
}

func checkPublishable(form *models.Form) error {
	if len(form.Questions) == 0 {
		return NewBusinessRuleError("publish_requires_questions", "a form needs at least one question before it can be published",
			map[string]interface{}{"form_id": form.ID})
	}
	return nil
}

func (s *formService) publishStatusChange(ctx context.Context, form *models.Form, previous models.FormStatus, userID string) {
	eventType, ok := events.StatusEventType(string(form.Status))
	if !ok {
		return
	}
	publishEvent(ctx, s.publisher, s.logger, events.NewFormEvent(eventType, events.FormStatusChangedEvent{
		FormID:         form.ID,
		FormTitle:      form.Title,
		PreviousStatus: string(previous),
		Status:         string(form.Status),
		QuestionCount:  len(form.Questions),
		ChangedBy:      userID,
	}))
}

func (s *formService) invalidateAnalytics(ctx context.Context, formID uint) {
	invalidateAnalytics(ctx, s.analytics, s.logger, formID)
}

// buildForm maps a request onto a fresh model. Missing order indexes fall back to list position;
// explicit ones are kept as given so the compiler can reject gaps.
func buildForm(req *CreateFormRequest) *models.Form {
	form := &models.Form{
		Title:                  strings.TrimSpace(req.Title),
		Description:            req.Description,
		Status:                 req.Status,
		ContentID:              req.ContentID,
		AllowAnonymous:         true,
		AllowMultipleResponses: req.AllowMultipleResponses,
		SuccessMessage:         req.SuccessMessage,
		PrimaryColor:           req.PrimaryColor,
		BackgroundColor:        req.BackgroundColor,
		FontFamily:             req.FontFamily,
		Questions:              buildQuestions(req.Questions),
	}
	if req.AllowAnonymous != nil {
		form.AllowAnonymous = *req.AllowAnonymous
	}
	return form
}

func buildQuestions(reqs []QuestionRequest) []models.Question {
	questions := make([]models.Question, len(reqs))
	for i, qr := range reqs {
		q := models.Question{
			OrderIndex:        i,
			QuestionText:      strings.TrimSpace(qr.QuestionText),
			QuestionType:      qr.QuestionType,
			IsRequired:        qr.IsRequired,
			Description:       qr.Description,
			Placeholder:       qr.Placeholder,
			ImageURL:          qr.ImageURL,
			Options:           buildOptions(qr.Options),
			MinValue:          qr.MinValue,
			MaxValue:          qr.MaxValue,
			MaxLength:         qr.MaxLength,
			WordPairs:         qr.WordPairs,
			GridSize:          qr.GridSize,
			CorrectAnswer:     qr.CorrectAnswer,
			CorrectOptionIDs:  qr.CorrectOptionIDs,
			Explanation:       qr.Explanation,
			IncorrectFeedback: qr.IncorrectFeedback,
			Points:            qr.Points,
		}
		if qr.ID != nil {
			q.ID = *qr.ID
		}
		if qr.OrderIndex != nil {
			q.OrderIndex = *qr.OrderIndex
		}
		if q.QuestionType == models.WordSearch && q.GridSize == nil {
			size := DefaultGridSize
			q.GridSize = &size
		}
		if len(q.CorrectOptionIDs) == 0 {
			for _, opt := range q.Options {
				if opt.IsCorrect {
					q.CorrectOptionIDs = append(q.CorrectOptionIDs, opt.OptionValue)
				}
			}
		}
		questions[i] = q
	}

	models.SortQuestions(questions)
	return questions
}

func buildOptions(reqs []OptionRequest) []models.QuestionOption {
	if len(reqs) == 0 {
		return nil
	}
	options := make([]models.QuestionOption, len(reqs))
	for i, opt := range reqs {
		value := strings.TrimSpace(opt.OptionValue)
		if value == "" {
			value = strings.TrimSpace(opt.OptionText)
		}
		options[i] = models.QuestionOption{
			OptionText:  strings.TrimSpace(opt.OptionText),
			OptionValue: value,
			OrderIndex:  i,
			IsCorrect:   opt.IsCorrect,
		}
		if opt.OrderIndex != nil {
			options[i].OrderIndex = *opt.OrderIndex
		}
	}

	sort.SliceStable(options, func(a, b int) bool {
		return options[a].OrderIndex < options[b].OrderIndex
	})
	models.ReindexOptions(options)
	return options
}

func mapFormError(err error) error {
	if repositories.IsNotFoundError(err) {
		return ErrFormNotFound
	}
	return err
}

func formIDOf(form *models.Form) uint {
	if form == nil {
		return 0
	}
	return form.ID
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
