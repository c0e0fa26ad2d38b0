package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = apperrors.ErrValidationFailed
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Form specific errors
	ErrFormNotFound              = errors.New("form not found")
	ErrFormNotEditable           = errors.New("form cannot be edited in current status")
	ErrInvalidStatusTransition   = errors.New("invalid form status transition")
	ErrFormNotAcceptingResponses = errors.New("form is not accepting responses")
	ErrFormInvalidDefinition     = apperrors.ErrInvalidDefinition

	// Question specific errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrFormHasResponses = errors.New("form has responses - questions and options cannot be removed")

	// Response specific errors
	ErrResponseNotFound        = errors.New("response not found")
	ErrAnonymousNotAllowed     = errors.New("form does not accept anonymous responses")
	ErrDuplicateResponse       = errors.New("respondent already submitted this form")
	ErrUnknownQuestion         = errors.New("answer references a question outside the form")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFormNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResponseNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAnonymousNotAllowed)
}

// IsValidation checks if error represents a validation failure. Invalid form
// definitions and rejected answers both count.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, apperrors.ErrInvalidDefinition) ||
		errors.Is(err, ErrUnknownQuestion) || errors.Is(err, ErrUnsupportedExportFormat) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre) ||
		errors.Is(err, ErrFormNotEditable) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrFormNotAcceptingResponses)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateResponse) ||
		errors.Is(err, ErrFormHasResponses)
}
