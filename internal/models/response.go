package models

import (
	"time"

	"gorm.io/datatypes"
)

type Response struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	FormID          uint      `json:"form_id" gorm:"not null;index"`
	IsAnonymous     bool      `json:"is_anonymous" gorm:"default:false"`
	RespondentID    *string   `json:"respondent_id,omitempty" gorm:"size:255;index"`
	RespondentName  *string   `json:"respondent_name,omitempty" gorm:"size:255"`
	RespondentEmail *string   `json:"respondent_email,omitempty" gorm:"size:255;index"`
	SubmittedAt     time.Time `json:"submitted_at" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at"`

	// Relations
	Answers []Answer `json:"answers" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
	Form    *Form    `json:"-" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
}

// Answer carries exactly one payload field, fixed by the question type at submission time.
type Answer struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	ResponseID   uint         `json:"response_id" gorm:"not null;index"`
	QuestionID   uint         `json:"question_id" gorm:"not null;index"`
	QuestionType QuestionType `json:"question_type" gorm:"size:30"`

	TextAnswer      *string                     `json:"text_answer,omitempty" gorm:"type:text"`
	NumberAnswer    *float64                    `json:"number_answer,omitempty"`
	BooleanAnswer   *bool                       `json:"boolean_answer,omitempty"`
	SelectedOptions datatypes.JSONSlice[string] `json:"selected_options,omitempty" gorm:"type:jsonb"`

	// Inlined by the analytics fetch
	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Response) TableName() string {
	return "form_responses"
}

func (Answer) TableName() string {
	return "response_answers"
}

// HasPayload reports whether the column named by field is populated.
func (a *Answer) HasPayload(field PayloadField) bool {
	switch field {
	case PayloadText:
		return a.TextAnswer != nil
	case PayloadNumber:
		return a.NumberAnswer != nil
	case PayloadBoolean:
		return a.BooleanAnswer != nil
	case PayloadOptions:
		return a.SelectedOptions != nil
	}
	return false
}

// AnswerFor indexes a response's answers by question.
func (r *Response) AnswerFor(questionID uint) (*Answer, bool) {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i], true
		}
	}
	return nil, false
}
