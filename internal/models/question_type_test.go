package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequirementsForIsTotal(t *testing.T) {
	for _, qt := range AllQuestionTypes() {
		req := RequirementsFor(qt)
		assert.True(t, qt.IsValid(), qt)
		assert.NotEmpty(t, req.Shape, "shape missing for %s", qt)
		assert.NotEmpty(t, req.Summary, "summary missing for %s", qt)
		assert.NotEmpty(t, req.Payload, "payload missing for %s", qt)
	}
	assert.Len(t, AllQuestionTypes(), 13)
	assert.False(t, QuestionType("matrix").IsValid())
}

func TestRequirementsFlags(t *testing.T) {
	tests := []struct {
		qt             QuestionType
		needsOptions   bool
		needsMinMax    bool
		needsMaxLength bool
		summary        SummaryKind
	}{
		{ShortText, false, false, true, SummaryText},
		{LongText, false, false, true, SummaryText},
		{OpenText, false, false, true, SummaryText},
		{SingleChoice, true, false, false, SummaryOptions},
		{MultiChoice, true, false, false, SummaryOptions},
		{RatingScale, false, true, false, SummaryRating},
		{Number, false, false, false, SummaryNumeric},
		{Email, false, false, false, SummaryText},
		{Date, false, false, false, SummaryText},
		{Time, false, false, false, SummaryText},
		{Boolean, false, false, false, SummaryBoolean},
		{WordSearch, false, false, false, SummaryText},
		{Crossword, false, false, false, SummaryText},
	}

	for _, tt := range tests {
		t.Run(string(tt.qt), func(t *testing.T) {
			req := RequirementsFor(tt.qt)
			assert.Equal(t, tt.needsOptions, req.NeedsOptions)
			assert.Equal(t, tt.needsMinMax, req.NeedsMinMax)
			assert.Equal(t, tt.needsMaxLength, req.NeedsMaxLength)
			assert.Equal(t, tt.summary, req.Summary)
		})
	}

	assert.True(t, RequirementsFor(WordSearch).NeedsWordPairs)
}

func TestAllQuestionTypesReturnsCopy(t *testing.T) {
	types := AllQuestionTypes()
	types[0] = "mutated"
	assert.Equal(t, ShortText, AllQuestionTypes()[0])
}

func TestFormStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to FormStatus
		want     bool
	}{
		{FormDraft, FormPublished, true},
		{FormDraft, FormClosed, false},
		{FormPublished, FormClosed, true},
		{FormPublished, FormDraft, false},
		{FormClosed, FormPublished, true},
		{FormClosed, FormArchived, true},
		{FormArchived, FormPublished, false},
		{FormArchived, FormDraft, false},
		{FormPublished, FormPublished, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, FormPublished.AcceptsResponses())
	assert.False(t, FormClosed.AcceptsResponses())
	assert.False(t, FormStatus("paused").IsValid())
}
