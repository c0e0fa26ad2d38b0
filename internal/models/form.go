package models

import (
	"time"

	"gorm.io/datatypes"
)

type FormStatus string

const (
	FormDraft     FormStatus = "draft"
	FormPublished FormStatus = "published"
	FormClosed    FormStatus = "closed"
	FormArchived  FormStatus = "archived"
)

func (s FormStatus) IsValid() bool {
	switch s {
	case FormDraft, FormPublished, FormClosed, FormArchived:
		return true
	}
	return false
}

// AcceptsResponses reports whether respondents may submit against a form in this status.
func (s FormStatus) AcceptsResponses() bool {
	return s == FormPublished
}

var statusTransitions = map[FormStatus][]FormStatus{
	FormDraft:     {FormPublished, FormArchived},
	FormPublished: {FormClosed, FormArchived},
	FormClosed:    {FormPublished, FormArchived},
}

// CanTransitionTo reports whether a form may move from s to next. Archived is terminal.
func (s FormStatus) CanTransitionTo(next FormStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Form struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Status      FormStatus `json:"status" gorm:"not null;default:draft;index"`
	ContentID   *uint      `json:"content_id" gorm:"index"`

	AllowAnonymous         bool `json:"allow_anonymous" gorm:"not null"`
	AllowMultipleResponses bool `json:"allow_multiple_responses" gorm:"default:false"`

	// Display configuration, passed through untouched
	SuccessMessage  *string `json:"success_message" gorm:"type:text"`
	PrimaryColor    *string `json:"primary_color" gorm:"size:20"`
	BackgroundColor *string `json:"background_color" gorm:"size:20"`
	FontFamily      *string `json:"font_family" gorm:"size:100"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	ResponseCount int `json:"response_count" gorm:"-"`
}

type Question struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	FormID     uint `json:"form_id" gorm:"not null;uniqueIndex:idx_form_question_order,priority:1"`
	OrderIndex int  `json:"order_index" gorm:"not null;uniqueIndex:idx_form_question_order,priority:2"`

	QuestionText string       `json:"question_text" gorm:"type:text;not null"`
	QuestionType QuestionType `json:"question_type" gorm:"not null;size:30;index"`
	IsRequired   bool         `json:"is_required" gorm:"default:false"`
	Description  *string      `json:"description" gorm:"type:text"`
	Placeholder  *string      `json:"placeholder" gorm:"size:255"`
	ImageURL     *string      `json:"image_url" gorm:"size:500"`

	// Type-specific structure
	Options   []QuestionOption                    `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MinValue  *float64                            `json:"min_value,omitempty"`
	MaxValue  *float64                            `json:"max_value,omitempty"`
	MaxLength *int                                `json:"max_length,omitempty"`
	WordPairs datatypes.JSONSlice[WordSearchPair] `json:"word_pairs,omitempty" gorm:"type:jsonb"`
	GridSize  *int                                `json:"grid_size,omitempty"`

	// Grading metadata, not used by validation or aggregation
	CorrectAnswer     *string                     `json:"correct_answer,omitempty" gorm:"type:text"`
	CorrectOptionIDs  datatypes.JSONSlice[string] `json:"correct_option_ids,omitempty" gorm:"type:jsonb"`
	Explanation       *string                     `json:"explanation,omitempty" gorm:"type:text"`
	IncorrectFeedback *string                     `json:"incorrect_feedback,omitempty" gorm:"type:text"`
	Points            *int                        `json:"points,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuestionOption struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	QuestionID  uint   `json:"question_id" gorm:"not null;index"`
	OptionText  string `json:"option_text" gorm:"not null;size:500"`
	OptionValue string `json:"option_value" gorm:"not null;size:255"`
	OrderIndex  int    `json:"order_index" gorm:"not null"`
	IsCorrect   bool   `json:"is_correct" gorm:"default:false"`
}

// WordSearchPair is one clue/word of a word-search question.
type WordSearchPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (Form) TableName() string {
	return "forms"
}

func (Question) TableName() string {
	return "form_questions"
}

func (QuestionOption) TableName() string {
	return "question_options"
}

// Requirements is a shorthand for the registry entry of the question's current type.
func (q *Question) Requirements() Requirements {
	return RequirementsFor(q.QuestionType)
}

// OptionByValue finds an option by its machine value.
func (q *Question) OptionByValue(value string) (*QuestionOption, bool) {
	for i := range q.Options {
		if q.Options[i].OptionValue == value {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// FindQuestion returns the question with the given persisted ID.
func (f *Form) FindQuestion(id uint) (*Question, bool) {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i], true
		}
	}
	return nil, false
}
