package services

import (
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/validator"
)

// ===== FORM REQUESTS =====

type CreateFormRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Status      models.FormStatus `json:"status" validate:"omitempty,form_status"`
	ContentID   *uint             `json:"content_id"`

	AllowAnonymous         *bool `json:"allow_anonymous"`
	AllowMultipleResponses bool  `json:"allow_multiple_responses"`

	SuccessMessage  *string `json:"success_message" validate:"omitempty,max=2000"`
	PrimaryColor    *string `json:"primary_color" validate:"omitempty,max=20"`
	BackgroundColor *string `json:"background_color" validate:"omitempty,max=20"`
	FontFamily      *string `json:"font_family" validate:"omitempty,max=100"`

	Questions []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// UpdateFormRequest replaces the whole definition. Questions carrying an id keep their
// identity; the rest are created.
type UpdateFormRequest CreateFormRequest

type QuestionRequest struct {
	ID           *uint               `json:"id"`
	QuestionText string              `json:"question_text" validate:"required,max=2000"`
	QuestionType models.QuestionType `json:"question_type" validate:"required,question_type"`
	OrderIndex   *int                `json:"order_index" validate:"omitempty,min=0"`
	IsRequired   bool                `json:"is_required"`
	Description  *string             `json:"description" validate:"omitempty,max=2000"`
	Placeholder  *string             `json:"placeholder" validate:"omitempty,max=255"`
	ImageURL     *string             `json:"image_url" validate:"omitempty,max=500"`

	Options   []OptionRequest         `json:"options" validate:"omitempty,dive"`
	MinValue  *float64                `json:"min_value"`
	MaxValue  *float64                `json:"max_value"`
	MaxLength *int                    `json:"max_length"`
	WordPairs []models.WordSearchPair `json:"word_pairs"`
	GridSize  *int                    `json:"grid_size"`

	CorrectAnswer     *string  `json:"correct_answer"`
	CorrectOptionIDs  []string `json:"correct_option_ids"`
	Explanation       *string  `json:"explanation"`
	IncorrectFeedback *string  `json:"incorrect_feedback"`
	Points            *int     `json:"points" validate:"omitempty,min=0"`
}

type OptionRequest struct {
	OptionText  string `json:"option_text" validate:"required,max=500"`
	OptionValue string `json:"option_value" validate:"omitempty,max=255"` // Defaults to option_text
	OrderIndex  *int   `json:"order_index" validate:"omitempty,min=0"`
	IsCorrect   bool   `json:"is_correct"`
}

type UpdateStatusRequest struct {
	Status models.FormStatus `json:"status" validate:"required,form_status"`
}

type ReorderQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" validate:"required,min=1"`
}

type SetCorrectOptionRequest struct {
	OptionValue string `json:"option_value" validate:"required"`
	IsCorrect   bool   `json:"is_correct"`
}

// ===== FORM RESPONSES =====

type FormListResponse struct {
	Forms  []*models.Form `json:"forms"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// DefinitionReport is the outcome of an authoring-time compile.
type DefinitionReport struct {
	Valid     bool                 `json:"valid"`
	Issues    ValidationErrors     `json:"issues,omitempty"`
	Questions []QuestionRuleReport `json:"questions,omitempty"`
}

type QuestionRuleReport struct {
	OrderIndex   int                 `json:"order_index"`
	QuestionType models.QuestionType `json:"question_type"`
	Required     bool                `json:"required"`
	Rules        []string            `json:"rules"`
}

// ===== RESPONSE REQUESTS =====

type SubmitResponseRequest struct {
	IsAnonymous     bool          `json:"is_anonymous"`
	RespondentName  *string       `json:"respondent_name" validate:"omitempty,max=255"`
	RespondentEmail *string       `json:"respondent_email" validate:"omitempty,email,max=255"`
	Answers         []AnswerInput `json:"answers" validate:"omitempty,dive"`
}

// AnswerInput carries one raw answer. Clients either set the payload field that matches the
// question or send a loosely typed value.
type AnswerInput struct {
	QuestionID      uint     `json:"question_id" validate:"required"`
	TextAnswer      *string  `json:"text_answer"`
	NumberAnswer    *float64 `json:"number_answer"`
	BooleanAnswer   *bool    `json:"boolean_answer"`
	SelectedOptions []string `json:"selected_options"`
	Value           any      `json:"value"`
}

// RawValue returns the first populated payload in the order selection, number, boolean, text, value.
func (a AnswerInput) RawValue() any {
	switch {
	case a.SelectedOptions != nil:
		return a.SelectedOptions
	case a.NumberAnswer != nil:
		return *a.NumberAnswer
	case a.BooleanAnswer != nil:
		return *a.BooleanAnswer
	case a.TextAnswer != nil:
		return *a.TextAnswer
	default:
		return a.Value
	}
}

// Respondent is the caller identity resolved from the bearer token, if any.
type Respondent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ResponseListResponse struct {
	Responses []*models.Response `json:"responses"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// ===== EXPORT =====

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportFile struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}

func ruleReport(schema *validator.FormSchema) []QuestionRuleReport {
	reports := make([]QuestionRuleReport, 0, len(schema.Questions))
	for _, rules := range schema.Questions {
		reports = append(reports, QuestionRuleReport{
			OrderIndex:   rules.OrderIndex,
			QuestionType: rules.QuestionType,
			Required:     rules.Required,
			Rules:        rules.RuleNames(),
		})
	}
	return reports
}
