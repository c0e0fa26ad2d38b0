package services

import (
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }

var submittedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func capitalQuestion(id uint, order int) models.Question {
	return models.Question{
		ID:           id,
		OrderIndex:   order,
		QuestionText: "Capital of France?",
		QuestionType: models.SingleChoice,
		IsRequired:   true,
		Options: []models.QuestionOption{
			{ID: 1, OptionText: "Paris", OptionValue: "paris", OrderIndex: 0, IsCorrect: true},
			{ID: 2, OptionText: "London", OptionValue: "london", OrderIndex: 1},
		},
	}
}

func ratingQuestion(id uint, order int) models.Question {
	return models.Question{
		ID:           id,
		OrderIndex:   order,
		QuestionText: "Rate the course",
		QuestionType: models.RatingScale,
		IsRequired:   true,
		MinValue:     floatPtr(1),
		MaxValue:     floatPtr(5),
	}
}

func numberQuestion(id uint, order int) models.Question {
	return models.Question{
		ID:           id,
		OrderIndex:   order,
		QuestionText: "Hours studied",
		QuestionType: models.Number,
	}
}

func booleanQuestion(id uint, order int) models.Question {
	return models.Question{
		ID:           id,
		OrderIndex:   order,
		QuestionText: "Would you recommend it?",
		QuestionType: models.Boolean,
	}
}

func languagesQuestion(id uint, order int, required bool) models.Question {
	return models.Question{
		ID:           id,
		OrderIndex:   order,
		QuestionText: "Languages you use",
		QuestionType: models.MultiChoice,
		IsRequired:   required,
		Options: []models.QuestionOption{
			{OptionText: "Go", OptionValue: "go", OrderIndex: 0},
			{OptionText: "Rust", OptionValue: "rust", OrderIndex: 1},
			{OptionText: "Python", OptionValue: "python", OrderIndex: 2},
		},
	}
}

func commentQuestion(id uint, order int) models.Question {
	return models.Question{
		ID:           id,
		OrderIndex:   order,
		QuestionText: "Comments",
		QuestionType: models.LongText,
		MaxLength:    intPtr(500),
	}
}

func newForm(questions ...models.Question) *models.Form {
	return &models.Form{
		ID:             7,
		Title:          "Course feedback",
		Status:         models.FormPublished,
		AllowAnonymous: true,
		CreatedBy:      "author-1",
		Questions:      questions,
	}
}

func choiceAnswer(questionID uint, values ...string) models.Answer {
	return models.Answer{QuestionID: questionID, QuestionType: models.SingleChoice, SelectedOptions: values}
}

func multiAnswer(questionID uint, values ...string) models.Answer {
	return models.Answer{QuestionID: questionID, QuestionType: models.MultiChoice, SelectedOptions: values}
}

func ratingAnswer(questionID uint, v float64) models.Answer {
	return models.Answer{QuestionID: questionID, QuestionType: models.RatingScale, NumberAnswer: floatPtr(v)}
}

func numberAnswer(questionID uint, v float64) models.Answer {
	return models.Answer{QuestionID: questionID, QuestionType: models.Number, NumberAnswer: floatPtr(v)}
}

func booleanAnswer(questionID uint, v bool) models.Answer {
	return models.Answer{QuestionID: questionID, QuestionType: models.Boolean, BooleanAnswer: boolPtr(v)}
}

func textAnswer(questionID uint, qType models.QuestionType, v string) models.Answer {
	return models.Answer{QuestionID: questionID, QuestionType: qType, TextAnswer: strPtr(v)}
}

func responseWith(id uint, answers ...models.Answer) models.Response {
	return models.Response{
		ID:          id,
		FormID:      7,
		IsAnonymous: true,
		SubmittedAt: submittedAt.Add(time.Duration(id) * time.Minute),
		Answers:     answers,
	}
}
