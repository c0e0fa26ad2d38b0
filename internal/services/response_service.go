package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"gorm.io/gorm"
)

// ResponseService accepts and reads submitted responses
type ResponseService interface {
	Submit(ctx context.Context, formID uint, req *SubmitResponseRequest, respondent *Respondent) (*models.Response, error)
	ListByForm(ctx context.Context, formID uint, filters repositories.ResponseFilters) (*ResponseListResponse, error)
	GetByID(ctx context.Context, id uint) (*models.Response, error)
}

type responseService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	svcLogger  *ServiceLogger
	validator  *validator.Validator
	normalizer *AnswerNormalizer
	analytics  *cache.AnalyticsCache
	publisher  events.EventPublisher
	now        func() time.Time
}

func NewResponseService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	analytics *cache.AnalyticsCache,
	publisher events.EventPublisher,
) ResponseService {
	return &responseService{
		repo:       repo,
		logger:     logger,
		svcLogger:  NewServiceLogger(logger, LogConfig{Service: "form-service", Component: "responses"}),
		validator:  validator,
		normalizer: NewAnswerNormalizer(validator),
		analytics:  analytics,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (s *responseService) Submit(ctx context.Context, formID uint, req *SubmitResponseRequest, respondent *Respondent) (response *models.Response, err error) {
	op := s.svcLogger.WithOperation(ctx, "submit_response", respondentID(respondent))
	defer func() { op.LogResult(formID, "form", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	raw, err := collectRawAnswers(req.Answers)
	if err != nil {
		return nil, err
	}

	var form *models.Form
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		form, err = s.repo.Form().GetByIDWithQuestions(ctx, tx, formID)
		if err != nil {
			return mapFormError(err)
		}
		if !form.Status.AcceptsResponses() {
			return fmt.Errorf("%w: form is %s", ErrFormNotAcceptingResponses, form.Status)
		}

		response, err = s.buildResponse(form, req, respondent)
		if err != nil {
			return err
		}

		if !response.IsAnonymous && !form.AllowMultipleResponses {
			if err := s.repo.Response().LockRespondent(ctx, tx, formID, *response.RespondentEmail); err != nil {
				return fmt.Errorf("failed to lock respondent: %w", err)
			}
			exists, err := s.repo.Response().ExistsByRespondentEmail(ctx, tx, formID, *response.RespondentEmail)
			if err != nil {
				return fmt.Errorf("failed to check previous responses: %w", err)
			}
			if exists {
				return ErrDuplicateResponse
			}
		}

		answers, err := s.normalizer.NormalizeResponse(form, raw)
		if err != nil {
			return err
		}
		response.Answers = answers

		return s.repo.Response().Create(ctx, tx, response)
	})
	if err != nil {
		return nil, err
	}

	invalidateAnalytics(ctx, s.analytics, s.logger, formID)
	publishEvent(ctx, s.publisher, s.logger, events.NewFormEvent(events.EventResponseSubmitted, events.ResponseSubmittedEvent{
		ResponseID:   response.ID,
		FormID:       form.ID,
		FormTitle:    form.Title,
		IsAnonymous:  response.IsAnonymous,
		RespondentID: response.RespondentID,
		AnswerCount:  len(response.Answers),
		SubmittedAt:  response.SubmittedAt,
	}))
	return response, nil
}

func (s *responseService) ListByForm(ctx context.Context, formID uint, filters repositories.ResponseFilters) (*ResponseListResponse, error) {
	if _, err := s.repo.Form().GetByID(ctx, nil, formID); err != nil {
		return nil, mapFormError(err)
	}

	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)
	responses, total, err := s.repo.Response().ListByForm(ctx, nil, formID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	return &ResponseListResponse{
		Responses: responses,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

func (s *responseService) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	response, err := s.repo.Response().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return response, nil
}

// buildResponse resolves who is answering. Anonymous responses keep no identity at all;
// named ones need an email, either given or taken from the token.
func (s *responseService) buildResponse(form *models.Form, req *SubmitResponseRequest, respondent *Respondent) (*models.Response, error) {
	response := &models.Response{
		FormID:      form.ID,
		IsAnonymous: req.IsAnonymous,
		SubmittedAt: s.now().UTC(),
	}

	if req.IsAnonymous {
		if !form.AllowAnonymous {
			return nil, ErrAnonymousNotAllowed
		}
		return response, nil
	}

	name := trimmed(req.RespondentName)
	email := trimmed(req.RespondentEmail)
	if respondent != nil {
		if respondent.ID != "" {
			id := respondent.ID
			response.RespondentID = &id
		}
		if name == nil && respondent.Name != "" {
			name = &respondent.Name
		}
		if email == nil && respondent.Email != "" {
			email = &respondent.Email
		}
	}
	if email == nil {
		return nil, ValidationErrors{*NewValidationError("respondent_email", "is required for non-anonymous responses", nil)}
	}

	normalized := strings.ToLower(*email)
	response.RespondentName = name
	response.RespondentEmail = &normalized
	return response, nil
}

// collectRawAnswers keys the submitted answers by question id, rejecting repeats.
func collectRawAnswers(inputs []AnswerInput) (map[uint]any, error) {
	raw := make(map[uint]any, len(inputs))
	var issues ValidationErrors
	for i, input := range inputs {
		if _, dup := raw[input.QuestionID]; dup {
			issues = append(issues, *NewValidationError(fmt.Sprintf("answers[%d].question_id", i), "question answered more than once", input.QuestionID))
			continue
		}
		raw[input.QuestionID] = input.RawValue()
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return raw, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func respondentID(r *Respondent) string {
	if r == nil || r.ID == "" {
		return "anonymous"
	}
	return r.ID
}
