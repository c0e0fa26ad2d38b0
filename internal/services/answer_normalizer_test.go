package services

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *AnswerNormalizer {
	return NewAnswerNormalizer(validator.New())
}

func TestNormalizeAnswer_Rating(t *testing.T) {
	n := newTestNormalizer()
	q := ratingQuestion(1, 0)

	tests := []struct {
		name    string
		raw     any
		want    float64
		wantErr bool
	}{
		{name: "int", raw: 3, want: 3},
		{name: "string", raw: " 4 ", want: 4},
		{name: "json number", raw: json.Number("5"), want: 5},
		{name: "float64 from json", raw: float64(2), want: 2},
		{name: "above max", raw: 6, wantErr: true},
		{name: "below min", raw: 0, wantErr: true},
		{name: "fractional", raw: 3.5, wantErr: true},
		{name: "not a number", raw: "great", wantErr: true},
		{name: "boolean", raw: true, wantErr: true},
		{name: "missing on required", raw: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := n.NormalizeAnswer(&q, tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
				var failure *apperrors.AnswerValidationError
				require.True(t, errors.As(err, &failure))
				assert.Equal(t, q.ID, failure.QuestionID)
				assert.NotEmpty(t, failure.Reason)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, answer)
			require.NotNil(t, answer.NumberAnswer)
			assert.Equal(t, tt.want, *answer.NumberAnswer)
			assert.Equal(t, models.RatingScale, answer.QuestionType)
			assert.Nil(t, answer.TextAnswer)
			assert.Nil(t, answer.SelectedOptions)
		})
	}
}

func TestNormalizeAnswer_MultiChoice(t *testing.T) {
	n := newTestNormalizer()

	t.Run("required empty set fails", func(t *testing.T) {
		q := languagesQuestion(2, 0, true)
		_, err := n.NormalizeAnswer(&q, []string{})
		assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	})

	t.Run("optional empty set is a valid empty answer", func(t *testing.T) {
		q := languagesQuestion(2, 0, false)
		answer, err := n.NormalizeAnswer(&q, []string{})
		require.NoError(t, err)
		require.NotNil(t, answer)
		assert.NotNil(t, answer.SelectedOptions)
		assert.Empty(t, answer.SelectedOptions)
	})

	t.Run("optional absent is omitted", func(t *testing.T) {
		q := languagesQuestion(2, 0, false)
		answer, err := n.NormalizeAnswer(&q, nil)
		require.NoError(t, err)
		assert.Nil(t, answer)
	})

	t.Run("comma joined string is split and ordered", func(t *testing.T) {
		q := languagesQuestion(2, 0, true)
		answer, err := n.NormalizeAnswer(&q, "python, go,go")
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "python"}, []string(answer.SelectedOptions))
	})

	t.Run("array of any", func(t *testing.T) {
		q := languagesQuestion(2, 0, true)
		answer, err := n.NormalizeAnswer(&q, []any{"rust", "go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "rust"}, []string(answer.SelectedOptions))
	})

	t.Run("foreign option fails", func(t *testing.T) {
		q := languagesQuestion(2, 0, false)
		_, err := n.NormalizeAnswer(&q, []string{"go", "java"})
		var failure *apperrors.AnswerValidationError
		require.True(t, errors.As(err, &failure))
		assert.Contains(t, failure.Reason, `"java"`)
	})
}

func TestNormalizeAnswer_SingleChoice(t *testing.T) {
	n := newTestNormalizer()
	q := capitalQuestion(3, 0)

	answer, err := n.NormalizeAnswer(&q, "paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"paris"}, []string(answer.SelectedOptions))

	_, err = n.NormalizeAnswer(&q, "")
	assert.Error(t, err, "required single choice needs a selection")

	_, err = n.NormalizeAnswer(&q, []string{"paris", "london"})
	assert.Error(t, err)
}

func TestNormalizeAnswer_Boolean(t *testing.T) {
	n := newTestNormalizer()
	q := booleanQuestion(4, 0)

	for raw, want := range map[any]bool{true: true, false: false, "Sí": true, "no": false, "true": true, "0": false} {
		answer, err := n.NormalizeAnswer(&q, raw)
		require.NoError(t, err, raw)
		require.NotNil(t, answer.BooleanAnswer)
		assert.Equal(t, want, *answer.BooleanAnswer, raw)
	}

	_, err := n.NormalizeAnswer(&q, "maybe")
	assert.Error(t, err)

	answer, err := n.NormalizeAnswer(&q, nil)
	require.NoError(t, err)
	assert.Nil(t, answer)

	q.IsRequired = true
	_, err = n.NormalizeAnswer(&q, nil)
	assert.Error(t, err, "required boolean must be explicit")

	answer, err = n.NormalizeAnswer(&q, false)
	require.NoError(t, err)
	assert.False(t, *answer.BooleanAnswer)
}

func TestNormalizeAnswer_Text(t *testing.T) {
	n := newTestNormalizer()

	q := commentQuestion(5, 0)
	answer, err := n.NormalizeAnswer(&q, "  Loved it, \"really\"  ")
	require.NoError(t, err)
	assert.Equal(t, `Loved it, "really"`, *answer.TextAnswer)

	answer, err = n.NormalizeAnswer(&q, "   ")
	require.NoError(t, err)
	assert.Nil(t, answer)

	q.IsRequired = true
	_, err = n.NormalizeAnswer(&q, "   ")
	assert.Error(t, err)

	date := models.Question{ID: 6, QuestionText: "Start date", QuestionType: models.Date}
	answer, err = n.NormalizeAnswer(&date, "2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", *answer.TextAnswer)
	_, err = n.NormalizeAnswer(&date, "14/03/2025")
	assert.Error(t, err)
}

func TestNormalizeAnswer_InvalidDefinition(t *testing.T) {
	n := newTestNormalizer()
	q := models.Question{ID: 9, QuestionText: "Broken", QuestionType: models.SingleChoice}

	_, err := n.NormalizeAnswer(&q, "a")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDefinition))
}

func TestNormalizeResponse(t *testing.T) {
	n := newTestNormalizer()
	form := newForm(capitalQuestion(1, 0), ratingQuestion(2, 1), commentQuestion(3, 2))

	t.Run("valid submission in question order", func(t *testing.T) {
		answers, err := n.NormalizeResponse(form, map[uint]any{2: "5", 1: "paris"})
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, uint(1), answers[0].QuestionID)
		assert.Equal(t, uint(2), answers[1].QuestionID)
	})

	t.Run("every failing field is reported", func(t *testing.T) {
		_, err := n.NormalizeResponse(form, map[uint]any{2: 9, 99: "x"})
		var failures apperrors.AnswerValidationErrors
		require.True(t, errors.As(err, &failures))
		assert.Len(t, failures, 3)

		_, ok := failures.ForQuestion(1)
		assert.True(t, ok, "missing required choice")
		reason, ok := failures.ForQuestion(2)
		assert.True(t, ok)
		assert.Equal(t, "must be between 1 and 5", reason)
		_, ok = failures.ForQuestion(99)
		assert.True(t, ok, "unknown question")
		_, ok = failures.ForQuestion(3)
		assert.False(t, ok)
	})
}
