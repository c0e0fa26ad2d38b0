package services

import (
	"fmt"
	"testing"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		validation   bool
		businessRule bool
		conflict     bool
		unauthorized bool
	}{
		{name: "form not found", err: ErrFormNotFound, notFound: true},
		{name: "wrapped response not found", err: fmt.Errorf("load: %w", ErrResponseNotFound), notFound: true},
		{name: "field issues", err: ValidationErrors{{Field: "title", Message: "is required"}}, validation: true},
		{name: "invalid definition", err: apperrors.NewInvalidDefinitionError(nil), validation: true},
		{name: "rejected answers", err: apperrors.AnswerValidationErrors{{QuestionID: 1, Reason: "is required"}}, validation: true},
		{name: "export format", err: fmt.Errorf("%w: pdf", ErrUnsupportedExportFormat), validation: true},
		{name: "business rule", err: NewBusinessRuleError("publish_requires_questions", "no questions", nil), businessRule: true},
		{name: "closed form", err: ErrFormNotAcceptingResponses, businessRule: true},
		{name: "duplicate response", err: ErrDuplicateResponse, conflict: true},
		{name: "structural edit", err: ErrFormHasResponses, conflict: true},
		{name: "anonymous refused", err: ErrAnonymousNotAllowed, unauthorized: true},
		{name: "unclassified", err: fmt.Errorf("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.businessRule, IsBusinessRule(tt.err))
			assert.Equal(t, tt.conflict, IsConflict(tt.err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(tt.err))
		})
	}
}
