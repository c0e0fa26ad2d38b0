package validator

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func ratingQuestion(required bool) models.Question {
	return models.Question{
		ID:           1,
		QuestionText: "How was it?",
		QuestionType: models.RatingScale,
		IsRequired:   required,
		MinValue:     floatPtr(1),
		MaxValue:     floatPtr(5),
	}
}

func multiChoiceQuestion(required bool) models.Question {
	return models.Question{
		ID:           2,
		QuestionText: "Pick your languages",
		QuestionType: models.MultiChoice,
		IsRequired:   required,
		OrderIndex:   1,
		Options: []models.QuestionOption{
			{OptionText: "Go", OptionValue: "go", OrderIndex: 0},
			{OptionText: "Rust", OptionValue: "rust", OrderIndex: 1},
		},
	}
}

func TestCompileQuestion_ChoiceWithoutOptions(t *testing.T) {
	v := New()
	q := models.Question{QuestionText: "Pick one", QuestionType: models.SingleChoice}

	_, err := v.Schema().CompileQuestion(&q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDefinition))

	var defErr *apperrors.InvalidDefinitionError
	require.True(t, errors.As(err, &defErr))
	assert.Equal(t, "options", defErr.Issues[0].Field)
}

func TestCompileQuestion_StructuralIssues(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		q     models.Question
		field string
	}{
		{
			name:  "blank text",
			q:     models.Question{QuestionText: "   ", QuestionType: models.ShortText},
			field: "question_text",
		},
		{
			name:  "unknown type",
			q:     models.Question{QuestionText: "Q", QuestionType: "slider"},
			field: "question_type",
		},
		{
			name:  "rating without bounds",
			q:     models.Question{QuestionText: "Q", QuestionType: models.RatingScale},
			field: "min_value",
		},
		{
			name:  "rating with inverted bounds",
			q:     models.Question{QuestionText: "Q", QuestionType: models.RatingScale, MinValue: floatPtr(5), MaxValue: floatPtr(1)},
			field: "max_value",
		},
		{
			name:  "fractional rating bound",
			q:     models.Question{QuestionText: "Q", QuestionType: models.RatingScale, MinValue: floatPtr(1), MaxValue: floatPtr(4.5)},
			field: "max_value",
		},
		{
			name:  "zero max length",
			q:     models.Question{QuestionText: "Q", QuestionType: models.LongText, MaxLength: intPtr(0)},
			field: "max_length",
		},
		{
			name: "duplicate option values",
			q: models.Question{QuestionText: "Q", QuestionType: models.MultiChoice, Options: []models.QuestionOption{
				{OptionText: "A", OptionValue: "a"}, {OptionText: "B", OptionValue: "a", OrderIndex: 1},
			}},
			field: "options[1].option_value",
		},
		{
			name: "two correct single choice options",
			q: models.Question{QuestionText: "Q", QuestionType: models.SingleChoice, Options: []models.QuestionOption{
				{OptionText: "A", OptionValue: "a", IsCorrect: true}, {OptionText: "B", OptionValue: "b", OrderIndex: 1, IsCorrect: true},
			}},
			field: "options",
		},
		{
			name:  "word search without words",
			q:     models.Question{QuestionText: "Q", QuestionType: models.WordSearch, GridSize: intPtr(10)},
			field: "word_pairs",
		},
		{
			name: "word longer than grid",
			q: models.Question{QuestionText: "Q", QuestionType: models.WordSearch, GridSize: intPtr(5),
				WordPairs: []models.WordSearchPair{{Question: "Capital of Argentina", Answer: "Buenos Aires"}}},
			field: "word_pairs[0].answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := v.Schema().CheckQuestion(&tt.q)
			require.NotEmpty(t, issues)
			fields := make([]string, len(issues))
			for i, issue := range issues {
				fields[i] = issue.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCompileQuestion_OneOptionIsEnough(t *testing.T) {
	v := New()
	q := models.Question{QuestionText: "Agree?", QuestionType: models.SingleChoice, Options: []models.QuestionOption{
		{OptionText: "Yes", OptionValue: "yes"},
	}}

	_, err := v.Schema().CompileQuestion(&q)
	assert.NoError(t, err)
}

func TestRatingRules(t *testing.T) {
	v := New()
	q := ratingQuestion(true)
	rules, err := v.Schema().CompileQuestion(&q)
	require.NoError(t, err)

	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Number: 3}))
	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Number: 1}))
	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Number: 5}))

	err = rules.Validate(AnswerValue{Present: true, Number: 6})
	require.Error(t, err)
	assert.Equal(t, "must be between 1 and 5", err.Error())

	assert.EqualError(t, rules.Validate(AnswerValue{Present: true, Number: 2.5}), "must be a whole number")
	assert.EqualError(t, rules.Validate(AnswerValue{}), "is required")
}

func TestRatingRules_WholeNumbersBeyondInt64(t *testing.T) {
	v := New()
	q := ratingQuestion(true)
	q.MaxValue = floatPtr(1e20)

	assert.Empty(t, v.Schema().CheckQuestion(&q))

	rules, err := v.Schema().CompileQuestion(&q)
	require.NoError(t, err)
	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Number: 1e19}))
	assert.EqualError(t, rules.Validate(AnswerValue{Present: true, Number: 2.5}), "must be a whole number")
}

func TestIsWhole(t *testing.T) {
	assert.True(t, isWhole(0))
	assert.True(t, isWhole(-3))
	assert.True(t, isWhole(1e20))
	assert.True(t, isWhole(-1e20))
	assert.False(t, isWhole(2.5))
	assert.False(t, isWhole(math.Inf(1)))
	assert.False(t, isWhole(math.NaN()))
}

func TestMultiChoiceRules(t *testing.T) {
	v := New()

	required := multiChoiceQuestion(true)
	rules, err := v.Schema().CompileQuestion(&required)
	require.NoError(t, err)
	assert.EqualError(t, rules.Validate(AnswerValue{}), "must select at least one option")
	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Options: []string{"go", "rust"}}))
	assert.EqualError(t, rules.Validate(AnswerValue{Present: true, Options: []string{"java"}}), `"java" is not an option of this question`)

	optional := multiChoiceQuestion(false)
	rules, err = v.Schema().CompileQuestion(&optional)
	require.NoError(t, err)
	assert.NoError(t, rules.Validate(AnswerValue{}))

	idx, ok := rules.OptionOrder("rust")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestSingleChoiceRules(t *testing.T) {
	v := New()
	q := models.Question{ID: 3, QuestionText: "Capital?", QuestionType: models.SingleChoice, IsRequired: true, Options: []models.QuestionOption{
		{OptionText: "Paris", OptionValue: "paris"},
		{OptionText: "Rome", OptionValue: "rome", OrderIndex: 1},
	}}
	rules, err := v.Schema().CompileQuestion(&q)
	require.NoError(t, err)

	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Options: []string{"paris"}}))
	assert.Error(t, rules.Validate(AnswerValue{}))
	assert.Error(t, rules.Validate(AnswerValue{Present: true, Options: []string{"paris", "rome"}}))
}

func TestTextFormatRules(t *testing.T) {
	v := New()

	tests := []struct {
		qType models.QuestionType
		good  []string
		bad   []string
	}{
		{models.Email, []string{"ana@example.com"}, []string{"ana@", "not an email"}},
		{models.Date, []string{"2024-02-29"}, []string{"2023-02-29", "29/02/2024"}},
		{models.Time, []string{"09:30", "23:59:59"}, []string{"25:00", "9am"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.qType), func(t *testing.T) {
			q := models.Question{QuestionText: "Q", QuestionType: tt.qType}
			rules, err := v.Schema().CompileQuestion(&q)
			require.NoError(t, err)

			for _, s := range tt.good {
				assert.NoError(t, rules.Validate(AnswerValue{Present: true, Text: s}), s)
			}
			for _, s := range tt.bad {
				assert.Error(t, rules.Validate(AnswerValue{Present: true, Text: s}), s)
			}
			assert.NoError(t, rules.Validate(AnswerValue{}), "optional empty value")
		})
	}
}

func TestMaxLengthCountsRunes(t *testing.T) {
	v := New()
	q := models.Question{QuestionText: "Nombre", QuestionType: models.ShortText, MaxLength: intPtr(4)}
	rules, err := v.Schema().CompileQuestion(&q)
	require.NoError(t, err)

	assert.NoError(t, rules.Validate(AnswerValue{Present: true, Text: "ñoño"}))
	assert.Error(t, rules.Validate(AnswerValue{Present: true, Text: "ñoños"}))
	assert.Equal(t, []string{"max_length"}, rules.RuleNames())
}

func TestCompileForm(t *testing.T) {
	v := New()
	form := &models.Form{
		ID:        10,
		Title:     "Feedback",
		Status:    models.FormDraft,
		Questions: []models.Question{ratingQuestion(true), multiChoiceQuestion(false)},
	}

	schema, err := v.Schema().CompileForm(form)
	require.NoError(t, err)
	require.Len(t, schema.Questions, 2)

	rules, ok := schema.ForQuestion(2)
	require.True(t, ok)
	assert.Equal(t, models.MultiChoice, rules.QuestionType)

	// Compiling twice yields the same rule layout.
	again, err := v.Schema().CompileForm(form)
	require.NoError(t, err)
	for i := range schema.Questions {
		assert.Equal(t, schema.Questions[i].RuleNames(), again.Questions[i].RuleNames())
	}
}

func TestCompileForm_CollectsPrefixedIssues(t *testing.T) {
	v := New()
	broken := multiChoiceQuestion(true)
	broken.Options = nil

	form := &models.Form{
		Title:     "",
		Status:    models.FormDraft,
		Questions: []models.Question{ratingQuestion(true), broken},
	}

	_, err := v.Schema().CompileForm(form)
	var defErr *apperrors.InvalidDefinitionError
	require.True(t, errors.As(err, &defErr))

	fields := make([]string, len(defErr.Issues))
	for i, issue := range defErr.Issues {
		fields[i] = issue.Field
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "questions[1].options")
}

func TestCompileForm_RejectsGappedOrder(t *testing.T) {
	v := New()
	second := multiChoiceQuestion(false)
	second.OrderIndex = 3

	_, err := v.Schema().CompileForm(&models.Form{
		Title:     "Gaps",
		Status:    models.FormDraft,
		Questions: []models.Question{ratingQuestion(false), second},
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDefinition))
}
