package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrInvalidDefinition marks a form or question that fails structural validation.
	ErrInvalidDefinition = stderrors.New("invalid form definition")
	// ErrValidationFailed marks a respondent answer that failed coercion or a response rule.
	ErrValidationFailed = stderrors.New("answer validation failed")
	// ErrSchemaDrift marks a stored answer whose payload no longer matches its question.
	ErrSchemaDrift = stderrors.New("answer does not match current question type")
)

// InvalidDefinitionError collects every structural problem found while compiling a form.
type InvalidDefinitionError struct {
	Issues ValidationErrors `json:"issues"`
}

func NewInvalidDefinitionError(issues ValidationErrors) *InvalidDefinitionError {
	return &InvalidDefinitionError{Issues: issues}
}

func (e *InvalidDefinitionError) Error() string {
	switch len(e.Issues) {
	case 0:
		return ErrInvalidDefinition.Error()
	case 1:
		return fmt.Sprintf("%s: %s %s", ErrInvalidDefinition, e.Issues[0].Field, e.Issues[0].Message)
	default:
		return fmt.Sprintf("%s: %d issues", ErrInvalidDefinition, len(e.Issues))
	}
}

func (e *InvalidDefinitionError) Unwrap() error {
	return ErrInvalidDefinition
}

// AnswerValidationError is the ValidationFailed(questionId, reason) outcome of normalizing one answer.
// Coercion and rule failures are reported the same way.
type AnswerValidationError struct {
	QuestionID uint   `json:"question_id"`
	Reason     string `json:"reason"`
}

func NewAnswerValidationError(questionID uint, reason string) *AnswerValidationError {
	return &AnswerValidationError{QuestionID: questionID, Reason: reason}
}

func (e *AnswerValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

func (e *AnswerValidationError) Unwrap() error {
	return ErrValidationFailed
}

// AnswerValidationErrors is a per-field collection for a whole submission.
type AnswerValidationErrors []AnswerValidationError

func (ae AnswerValidationErrors) Error() string {
	if len(ae) == 1 {
		return fmt.Sprintf("%s: %s", ErrValidationFailed, ae[0].Error())
	}
	return fmt.Sprintf("%s: %d answers rejected", ErrValidationFailed, len(ae))
}

func (ae AnswerValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// ForQuestion returns the reason recorded for a question, if any.
func (ae AnswerValidationErrors) ForQuestion(questionID uint) (string, bool) {
	for _, e := range ae {
		if e.QuestionID == questionID {
			return e.Reason, true
		}
	}
	return "", false
}

// SchemaDriftError describes one skipped answer during aggregation.
type SchemaDriftError struct {
	QuestionID   uint   `json:"question_id"`
	ResponseID   uint   `json:"response_id"`
	AnswerType   string `json:"answer_type"`
	QuestionType string `json:"question_type"`
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("response %d question %d: answer recorded as %q, question is now %q",
		e.ResponseID, e.QuestionID, e.AnswerType, e.QuestionType)
}

func (e *SchemaDriftError) Unwrap() error {
	return ErrSchemaDrift
}

// PrefixField namespaces issue fields, e.g. "questions[2]." + "options".
func PrefixField(prefix string, issues ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(issues))
	for i, issue := range issues {
		issue.Field = prefix + issue.Field
		out[i] = issue
	}
	return out
}
