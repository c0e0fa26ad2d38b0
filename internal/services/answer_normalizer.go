package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/spf13/cast"
)

// AnswerNormalizer converts raw captured values into canonical answers. It holds no state
// besides the schema compiler, so every call is a pure function of its inputs.
type AnswerNormalizer struct {
	schema *validator.SchemaCompiler
}

func NewAnswerNormalizer(v *validator.Validator) *AnswerNormalizer {
	return &AnswerNormalizer{schema: v.Schema()}
}

// NormalizeAnswer coerces raw into the question's answer shape and checks it against the
// question's response rules. A nil answer with a nil error means the question was left blank.
func (n *AnswerNormalizer) NormalizeAnswer(q *models.Question, raw any) (*models.Answer, error) {
	rules, err := n.schema.CompileQuestion(q)
	if err != nil {
		return nil, err
	}
	return normalizeWithRules(q, rules, raw)
}

// NormalizeResponse normalizes a whole submission keyed by question id. Every question is
// checked, so the returned AnswerValidationErrors lists each rejected field at once. Answers
// come back in question order; blank optional questions are omitted.
func (n *AnswerNormalizer) NormalizeResponse(form *models.Form, raw map[uint]any) ([]models.Answer, error) {
	schema, err := n.schema.CompileForm(form)
	if err != nil {
		return nil, err
	}

	var failures apperrors.AnswerValidationErrors
	for id := range raw {
		if _, ok := schema.ForQuestion(id); !ok {
			failures = append(failures, *apperrors.NewAnswerValidationError(id, ErrUnknownQuestion.Error()))
		}
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].QuestionID < failures[j].QuestionID })

	questions := make([]*models.Question, len(form.Questions))
	for i := range form.Questions {
		questions[i] = &form.Questions[i]
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })

	answers := make([]models.Answer, 0, len(raw))
	for _, q := range questions {
		rules, _ := schema.ForQuestion(q.ID)
		if rules == nil {
			continue
		}
		answer, err := normalizeWithRules(q, rules, raw[q.ID])
		if err != nil {
			var failure *apperrors.AnswerValidationError
			if errors.As(err, &failure) {
				failures = append(failures, *failure)
				continue
			}
			return nil, err
		}
		if answer != nil {
			answers = append(answers, *answer)
		}
	}

	if len(failures) > 0 {
		return nil, failures
	}
	return answers, nil
}

func normalizeWithRules(q *models.Question, rules *validator.QuestionRules, raw any) (*models.Answer, error) {
	req := rules.Requirements

	value, err := coerce(req.Shape, rules, raw)
	if err != nil {
		return nil, apperrors.NewAnswerValidationError(q.ID, err.Error())
	}
	if err := rules.Validate(value); err != nil {
		return nil, apperrors.NewAnswerValidationError(q.ID, err.Error())
	}
	if !value.Present {
		return nil, nil
	}

	answer := &models.Answer{QuestionID: q.ID, QuestionType: q.QuestionType}
	switch req.Payload {
	case models.PayloadText:
		text := value.Text
		answer.TextAnswer = &text
	case models.PayloadNumber:
		num := value.Number
		answer.NumberAnswer = &num
	case models.PayloadBoolean:
		b := value.Bool
		answer.BooleanAnswer = &b
	case models.PayloadOptions:
		answer.SelectedOptions = append(make([]string, 0, len(value.Options)), value.Options...)
	}
	return answer, nil
}

// ===== COERCION =====

func coerce(shape models.AnswerShape, rules *validator.QuestionRules, raw any) (validator.AnswerValue, error) {
	switch shape {
	case models.ShapeNumber, models.ShapeRating:
		return coerceNumber(raw)
	case models.ShapeBoolean:
		return coerceBoolean(raw)
	case models.ShapeSingleChoice, models.ShapeMultiChoice:
		return coerceSelection(shape, rules, raw)
	default:
		return coerceText(raw)
	}
}

func coerceText(raw any) (validator.AnswerValue, error) {
	if raw == nil {
		return validator.AnswerValue{}, nil
	}
	text, err := cast.ToStringE(raw)
	if err != nil {
		return validator.AnswerValue{}, fmt.Errorf("must be text")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return validator.AnswerValue{}, nil
	}
	return validator.AnswerValue{Present: true, Text: text}, nil
}

func coerceNumber(raw any) (validator.AnswerValue, error) {
	switch v := raw.(type) {
	case nil:
		return validator.AnswerValue{}, nil
	case bool:
		return validator.AnswerValue{}, fmt.Errorf("must be a number")
	case string:
		if strings.TrimSpace(v) == "" {
			return validator.AnswerValue{}, nil
		}
		raw = strings.TrimSpace(v)
	}

	num, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return validator.AnswerValue{}, fmt.Errorf("must be a number")
	}
	return validator.AnswerValue{Present: true, Number: num}, nil
}

func coerceBoolean(raw any) (validator.AnswerValue, error) {
	if s, ok := raw.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "":
			return validator.AnswerValue{}, nil
		case "sí", "si", "yes":
			return validator.AnswerValue{Present: true, Bool: true}, nil
		case "no":
			return validator.AnswerValue{Present: true, Bool: false}, nil
		}
		raw = strings.TrimSpace(s)
	}
	if raw == nil {
		return validator.AnswerValue{}, nil
	}

	b, err := cast.ToBoolE(raw)
	if err != nil {
		return validator.AnswerValue{}, fmt.Errorf("must be true or false")
	}
	return validator.AnswerValue{Present: true, Bool: b}, nil
}

// coerceSelection builds the set of selected option values. Multi-choice accepts a
// comma-joined string or an array; values are trimmed, de-duplicated and put in option order.
func coerceSelection(shape models.AnswerShape, rules *validator.QuestionRules, raw any) (validator.AnswerValue, error) {
	if raw == nil {
		return validator.AnswerValue{}, nil
	}

	var items []string
	switch v := raw.(type) {
	case string:
		if shape == models.ShapeMultiChoice {
			items = strings.Split(v, ",")
		} else {
			items = []string{v}
		}
	default:
		list, err := cast.ToStringSliceE(raw)
		if err != nil {
			return validator.AnswerValue{}, fmt.Errorf("must be a list of option values")
		}
		items = list
	}

	seen := make(map[string]bool, len(items))
	selected := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		selected = append(selected, item)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		oi, okI := rules.OptionOrder(selected[i])
		oj, okJ := rules.OptionOrder(selected[j])
		switch {
		case okI && okJ:
			return oi < oj
		case okI != okJ:
			return okI
		default:
			return selected[i] < selected[j]
		}
	})

	if shape == models.ShapeSingleChoice && len(selected) == 0 {
		return validator.AnswerValue{}, nil
	}
	// An explicit empty multi-choice selection is still an answer.
	return validator.AnswerValue{Present: true, Options: selected}, nil
}
