package models

type QuestionType string

const (
	ShortText    QuestionType = "short_text"
	LongText     QuestionType = "long_text"
	OpenText     QuestionType = "open_text"
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	RatingScale  QuestionType = "rating_scale"
	Number       QuestionType = "number"
	Email        QuestionType = "email"
	Date         QuestionType = "date"
	Time         QuestionType = "time"
	Boolean      QuestionType = "boolean"
	WordSearch   QuestionType = "word_search"
	Crossword    QuestionType = "crossword"
)

// AnswerShape is the canonical payload a question type accepts.
type AnswerShape string

const (
	ShapeText         AnswerShape = "text"
	ShapeEmail        AnswerShape = "email"
	ShapeDate         AnswerShape = "date"
	ShapeTime         AnswerShape = "time"
	ShapeNumber       AnswerShape = "number"
	ShapeRating       AnswerShape = "rating"
	ShapeSingleChoice AnswerShape = "single_choice"
	ShapeMultiChoice  AnswerShape = "multi_choice"
	ShapeBoolean      AnswerShape = "boolean"
)

// SummaryKind selects the analytics payload produced for a question.
type SummaryKind string

const (
	SummaryOptions SummaryKind = "options"
	SummaryRating  SummaryKind = "rating"
	SummaryNumeric SummaryKind = "numeric"
	SummaryBoolean SummaryKind = "boolean"
	SummaryText    SummaryKind = "text"
)

// PayloadField names the Answer column that carries a shape's value.
type PayloadField string

const (
	PayloadText    PayloadField = "text_answer"
	PayloadNumber  PayloadField = "number_answer"
	PayloadBoolean PayloadField = "boolean_answer"
	PayloadOptions PayloadField = "selected_options"
)

// Requirements describes the structural rules and answer contract of a question type.
type Requirements struct {
	NeedsOptions   bool         `json:"needs_options"`
	NeedsMinMax    bool         `json:"needs_min_max"`
	NeedsMaxLength bool         `json:"needs_max_length"`
	NeedsWordPairs bool         `json:"needs_word_pairs"`
	Shape          AnswerShape  `json:"answer_shape"`
	Summary        SummaryKind  `json:"summary"`
	Payload        PayloadField `json:"payload"`
}

var textRequirements = Requirements{NeedsMaxLength: true, Shape: ShapeText, Summary: SummaryText, Payload: PayloadText}

var registry = map[QuestionType]Requirements{
	ShortText: textRequirements,
	LongText:  textRequirements,
	OpenText:  textRequirements,
	SingleChoice: {
		NeedsOptions: true, Shape: ShapeSingleChoice, Summary: SummaryOptions, Payload: PayloadOptions,
	},
	MultiChoice: {
		NeedsOptions: true, Shape: ShapeMultiChoice, Summary: SummaryOptions, Payload: PayloadOptions,
	},
	RatingScale: {
		NeedsMinMax: true, Shape: ShapeRating, Summary: SummaryRating, Payload: PayloadNumber,
	},
	Number:  {Shape: ShapeNumber, Summary: SummaryNumeric, Payload: PayloadNumber},
	Email:   {Shape: ShapeEmail, Summary: SummaryText, Payload: PayloadText},
	Date:    {Shape: ShapeDate, Summary: SummaryText, Payload: PayloadText},
	Time:    {Shape: ShapeTime, Summary: SummaryText, Payload: PayloadText},
	Boolean: {Shape: ShapeBoolean, Summary: SummaryBoolean, Payload: PayloadBoolean},
	WordSearch: {
		NeedsWordPairs: true, Shape: ShapeText, Summary: SummaryText, Payload: PayloadText,
	},
	Crossword: {Shape: ShapeText, Summary: SummaryText, Payload: PayloadText},
}

// orderedTypes keeps the enumeration stable for listings and validation messages.
var orderedTypes = []QuestionType{
	ShortText, LongText, OpenText, SingleChoice, MultiChoice, RatingScale,
	Number, Email, Date, Time, Boolean, WordSearch, Crossword,
}

// RequirementsFor returns the registry entry for a question type. Callers are expected to
// have checked IsValid; an unknown type yields the zero Requirements.
func RequirementsFor(t QuestionType) Requirements {
	return registry[t]
}

func (t QuestionType) IsValid() bool {
	_, ok := registry[t]
	return ok
}

func (t QuestionType) Requirements() Requirements {
	return RequirementsFor(t)
}

func (t QuestionType) String() string {
	return string(t)
}

// AllQuestionTypes lists every question type in declaration order.
func AllQuestionTypes() []QuestionType {
	out := make([]QuestionType, len(orderedTypes))
	copy(out, orderedTypes)
	return out
}

// IsTextual reports whether answers of this shape are carried as strings.
func (s AnswerShape) IsTextual() bool {
	switch s {
	case ShapeText, ShapeEmail, ShapeDate, ShapeTime:
		return true
	}
	return false
}
