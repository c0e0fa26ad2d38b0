package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	MinGridSize        = 5
	MaxGridSize        = 20
	MaxQuestionTextLen = 2000
	MaxTitleLen        = 200

	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	TimeLayoutSeconds = "15:04:05"
)

// AnswerValue is an answer already coerced to its question's shape, waiting for rule checks.
type AnswerValue struct {
	Present bool
	Text    string
	Number  float64
	Bool    bool
	Options []string
}

// Rule is one named response-time check. Check returns a human readable failure.
type Rule struct {
	Name  string
	Check func(v AnswerValue) error
}

// QuestionRules is the compiled contract of a single question.
type QuestionRules struct {
	QuestionID   uint
	OrderIndex   int
	QuestionType models.QuestionType
	Requirements models.Requirements
	Required     bool
	MinValue     *float64
	MaxValue     *float64
	MaxLength    *int

	options map[string]int
	rules   []Rule
}

// Validate runs every rule and returns the first failure.
func (r *QuestionRules) Validate(v AnswerValue) error {
	for _, rule := range r.rules {
		if err := rule.Check(v); err != nil {
			return err
		}
	}
	return nil
}

// RuleNames lists the compiled rules in evaluation order.
func (r *QuestionRules) RuleNames() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// OptionOrder returns the orderIndex of an allowed option value.
func (r *QuestionRules) OptionOrder(value string) (int, bool) {
	idx, ok := r.options[value]
	return idx, ok
}

// FormSchema holds the compiled rules of a form, in question order.
type FormSchema struct {
	FormID    uint
	Questions []*QuestionRules
	byID      map[uint]*QuestionRules
}

func (s *FormSchema) ForQuestion(id uint) (*QuestionRules, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// SchemaCompiler turns form definitions into rule sets. It keeps no state besides the
// struct validator used for value formats, so compiling is deterministic.
type SchemaCompiler struct {
	validate *validator.Validate
}

func NewSchemaCompiler(validate *validator.Validate) *SchemaCompiler {
	return &SchemaCompiler{validate: validate}
}

// CompileForm checks the form and every question structurally and returns the compiled schema.
// Any structural problem yields an InvalidDefinitionError listing all issues.
func (c *SchemaCompiler) CompileForm(form *models.Form) (*FormSchema, error) {
	var issues apperrors.ValidationErrors

	if issue := c.checkVar("title", strings.TrimSpace(form.Title), fmt.Sprintf("required,max=%d", MaxTitleLen)); issue != nil {
		issues = append(issues, *issue)
	}
	if !form.Status.IsValid() {
		issues = append(issues, *apperrors.NewValidationErrorWithRule("status", "must be a valid form status (draft, published, closed, archived)", "form_status", form.Status))
	}
	if err := models.ValidateQuestionOrder(form.Questions); err != nil {
		issues = append(issues, *apperrors.NewValidationErrorWithRule("questions", err.Error(), "order", nil))
	}

	schema := &FormSchema{
		FormID:    form.ID,
		Questions: make([]*QuestionRules, 0, len(form.Questions)),
		byID:      make(map[uint]*QuestionRules, len(form.Questions)),
	}

	seenIDs := make(map[uint]bool, len(form.Questions))
	for i := range form.Questions {
		q := &form.Questions[i]
		prefix := fmt.Sprintf("questions[%d].", i)

		if q.ID != 0 {
			if seenIDs[q.ID] {
				issues = append(issues, *apperrors.NewValidationErrorWithRule(prefix+"id", "question listed more than once", "unique", q.ID))
			}
			seenIDs[q.ID] = true
		}

		if qIssues := c.CheckQuestion(q); len(qIssues) > 0 {
			issues = append(issues, apperrors.PrefixField(prefix, qIssues)...)
			continue
		}

		rules := c.buildRules(q)
		schema.Questions = append(schema.Questions, rules)
		if q.ID != 0 {
			schema.byID[q.ID] = rules
		}
	}

	if len(issues) > 0 {
		return nil, apperrors.NewInvalidDefinitionError(issues)
	}
	return schema, nil
}

// CompileQuestion compiles a single question, for authoring-time feedback.
func (c *SchemaCompiler) CompileQuestion(q *models.Question) (*QuestionRules, error) {
	if issues := c.CheckQuestion(q); len(issues) > 0 {
		return nil, apperrors.NewInvalidDefinitionError(issues)
	}
	return c.buildRules(q), nil
}

// CheckQuestion returns the structural issues of a question definition.
func (c *SchemaCompiler) CheckQuestion(q *models.Question) apperrors.ValidationErrors {
	var issues apperrors.ValidationErrors
	add := func(field, message, rule string, value interface{}) {
		issues = append(issues, *apperrors.NewValidationErrorWithRule(field, message, rule, value))
	}

	if issue := c.checkVar("question_text", strings.TrimSpace(q.QuestionText), fmt.Sprintf("required,max=%d", MaxQuestionTextLen)); issue != nil {
		issues = append(issues, *issue)
	}

	if !q.QuestionType.IsValid() {
		add("question_type", "must be a valid question type", "question_type", q.QuestionType)
		return issues
	}
	req := q.Requirements()

	if req.NeedsOptions {
		issues = append(issues, checkOptions(q)...)
	}

	if req.NeedsMinMax {
		switch {
		case q.MinValue == nil || q.MaxValue == nil:
			add("min_value", "min_value and max_value are required", "required", nil)
		case *q.MinValue >= *q.MaxValue:
			add("max_value", "must be greater than min_value", "gtfield", *q.MaxValue)
		}
		if q.QuestionType == models.RatingScale {
			if q.MinValue != nil && !isWhole(*q.MinValue) {
				add("min_value", "must be a whole number", "integer", *q.MinValue)
			}
			if q.MaxValue != nil && !isWhole(*q.MaxValue) {
				add("max_value", "must be a whole number", "integer", *q.MaxValue)
			}
		}
	} else if q.MinValue != nil && q.MaxValue != nil && *q.MinValue >= *q.MaxValue {
		add("max_value", "must be greater than min_value", "gtfield", *q.MaxValue)
	}

	if req.NeedsMaxLength && q.MaxLength != nil && *q.MaxLength <= 0 {
		add("max_length", "must be a positive integer", "gt", *q.MaxLength)
	}

	if req.NeedsWordPairs {
		issues = append(issues, checkWordPairs(q)...)
	}

	return issues
}

func checkOptions(q *models.Question) apperrors.ValidationErrors {
	var issues apperrors.ValidationErrors
	if len(q.Options) < 1 {
		issues = append(issues, *apperrors.NewValidationErrorWithRule("options", "must have at least 1 option", "min", len(q.Options)))
		return issues
	}

	values := make(map[string]bool, len(q.Options))
	correct := 0
	for i, opt := range q.Options {
		field := fmt.Sprintf("options[%d]", i)
		if strings.TrimSpace(opt.OptionText) == "" {
			issues = append(issues, *apperrors.NewValidationErrorWithRule(field+".option_text", "is required", "required", opt.OptionText))
		}
		if strings.TrimSpace(opt.OptionValue) == "" {
			issues = append(issues, *apperrors.NewValidationErrorWithRule(field+".option_value", "is required", "required", opt.OptionValue))
		} else if values[opt.OptionValue] {
			issues = append(issues, *apperrors.NewValidationErrorWithRule(field+".option_value", "must be unique within the question", "unique", opt.OptionValue))
		}
		values[opt.OptionValue] = true
		if opt.IsCorrect {
			correct++
		}
	}

	if q.QuestionType == models.SingleChoice && correct > 1 {
		issues = append(issues, *apperrors.NewValidationErrorWithRule("options", "at most one option may be correct", "max", correct))
	}
	for _, id := range q.CorrectOptionIDs {
		if !values[id] {
			issues = append(issues, *apperrors.NewValidationErrorWithRule("correct_option_ids", fmt.Sprintf("%q does not match any option", id), "oneof", id))
		}
	}
	return issues
}

func checkWordPairs(q *models.Question) apperrors.ValidationErrors {
	var issues apperrors.ValidationErrors
	if q.GridSize == nil || *q.GridSize < MinGridSize || *q.GridSize > MaxGridSize {
		issues = append(issues, *apperrors.NewValidationErrorWithRule("grid_size", fmt.Sprintf("must be between %d and %d", MinGridSize, MaxGridSize), "range", q.GridSize))
	}
	if len(q.WordPairs) == 0 {
		issues = append(issues, *apperrors.NewValidationErrorWithRule("word_pairs", "must have at least 1 word", "min", 0))
		return issues
	}

	for i, pair := range q.WordPairs {
		field := fmt.Sprintf("word_pairs[%d]", i)
		if strings.TrimSpace(pair.Question) == "" {
			issues = append(issues, *apperrors.NewValidationErrorWithRule(field+".question", "is required", "required", pair.Question))
		}
		word := strings.ReplaceAll(strings.TrimSpace(pair.Answer), " ", "")
		if word == "" {
			issues = append(issues, *apperrors.NewValidationErrorWithRule(field+".answer", "is required", "required", pair.Answer))
		} else if q.GridSize != nil && utf8.RuneCountInString(word) > *q.GridSize {
			issues = append(issues, *apperrors.NewValidationErrorWithRule(field+".answer", "does not fit in the grid", "max", pair.Answer))
		}
	}
	return issues
}

func (c *SchemaCompiler) checkVar(field string, value interface{}, tag string) *apperrors.ValidationError {
	err := c.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		issue := errs[0]
		issue.Field = field
		return &issue
	}
	return apperrors.NewValidationError(field, err.Error(), value)
}

// ===== RESPONSE-TIME RULES =====

func (c *SchemaCompiler) buildRules(q *models.Question) *QuestionRules {
	req := q.Requirements()
	r := &QuestionRules{
		QuestionID:   q.ID,
		OrderIndex:   q.OrderIndex,
		QuestionType: q.QuestionType,
		Requirements: req,
		Required:     q.IsRequired,
		MinValue:     q.MinValue,
		MaxValue:     q.MaxValue,
		MaxLength:    q.MaxLength,
		options:      make(map[string]int, len(q.Options)),
	}
	for _, opt := range q.Options {
		r.options[opt.OptionValue] = opt.OrderIndex
	}

	switch req.Shape {
	case models.ShapeText, models.ShapeEmail, models.ShapeDate, models.ShapeTime:
		r.rules = c.textRules(r)
	case models.ShapeNumber, models.ShapeRating:
		r.rules = numberRules(r)
	case models.ShapeSingleChoice:
		r.rules = singleChoiceRules(r)
	case models.ShapeMultiChoice:
		r.rules = multiChoiceRules(r)
	case models.ShapeBoolean:
		r.rules = booleanRules(r)
	}
	return r
}

func (c *SchemaCompiler) textRules(r *QuestionRules) []Rule {
	var rules []Rule
	filled := func(v AnswerValue) bool { return v.Present && strings.TrimSpace(v.Text) != "" }

	if r.Required {
		rules = append(rules, Rule{Name: "required", Check: func(v AnswerValue) error {
			if !filled(v) {
				return fmt.Errorf("is required")
			}
			return nil
		}})
	}

	if r.Requirements.NeedsMaxLength && r.MaxLength != nil {
		limit := *r.MaxLength
		rules = append(rules, Rule{Name: "max_length", Check: func(v AnswerValue) error {
			if utf8.RuneCountInString(v.Text) > limit {
				return fmt.Errorf("must be at most %d characters", limit)
			}
			return nil
		}})
	}

	switch r.Requirements.Shape {
	case models.ShapeEmail:
		rules = append(rules, c.formatRule("email", "must be a valid email address", filled, "email"))
	case models.ShapeDate:
		rules = append(rules, c.formatRule("date", "must be a date in YYYY-MM-DD format", filled, "datetime="+DateLayout))
	case models.ShapeTime:
		rules = append(rules, c.formatRule("time", "must be a time in HH:MM format", filled, "datetime="+TimeLayout, "datetime="+TimeLayoutSeconds))
	}
	return rules
}

// formatRule accepts a filled value when any of the validator tags passes.
func (c *SchemaCompiler) formatRule(name, message string, filled func(AnswerValue) bool, tags ...string) Rule {
	return Rule{Name: name, Check: func(v AnswerValue) error {
		if !filled(v) {
			return nil
		}
		text := strings.TrimSpace(v.Text)
		for _, tag := range tags {
			if c.validate.Var(text, tag) == nil {
				return nil
			}
		}
		return fmt.Errorf("%s", message)
	}}
}

func numberRules(r *QuestionRules) []Rule {
	var rules []Rule
	if r.Required {
		rules = append(rules, Rule{Name: "required", Check: func(v AnswerValue) error {
			if !v.Present {
				return fmt.Errorf("is required")
			}
			return nil
		}})
	}

	if r.Requirements.Shape == models.ShapeRating {
		rules = append(rules, Rule{Name: "integer", Check: func(v AnswerValue) error {
			if v.Present && !isWhole(v.Number) {
				return fmt.Errorf("must be a whole number")
			}
			return nil
		}})
	}

	if r.MinValue != nil || r.MaxValue != nil {
		lo, hi := r.MinValue, r.MaxValue
		rules = append(rules, Rule{Name: "range", Check: func(v AnswerValue) error {
			if !v.Present {
				return nil
			}
			switch {
			case lo != nil && hi != nil && (v.Number < *lo || v.Number > *hi):
				return fmt.Errorf("must be between %s and %s", formatNumber(*lo), formatNumber(*hi))
			case lo != nil && v.Number < *lo:
				return fmt.Errorf("must be at least %s", formatNumber(*lo))
			case hi != nil && v.Number > *hi:
				return fmt.Errorf("must be at most %s", formatNumber(*hi))
			}
			return nil
		}})
	}
	return rules
}

func singleChoiceRules(r *QuestionRules) []Rule {
	rules := []Rule{{Name: "cardinality", Check: func(v AnswerValue) error {
		switch {
		case r.Required && len(v.Options) != 1:
			return fmt.Errorf("must select exactly one option")
		case len(v.Options) > 1:
			return fmt.Errorf("at most one option may be selected")
		}
		return nil
	}}}
	return append(rules, membershipRule(r))
}

func multiChoiceRules(r *QuestionRules) []Rule {
	var rules []Rule
	if r.Required {
		rules = append(rules, Rule{Name: "required", Check: func(v AnswerValue) error {
			if len(v.Options) == 0 {
				return fmt.Errorf("must select at least one option")
			}
			return nil
		}})
	}
	return append(rules, membershipRule(r))
}

func membershipRule(r *QuestionRules) Rule {
	return Rule{Name: "options", Check: func(v AnswerValue) error {
		seen := make(map[string]bool, len(v.Options))
		for _, value := range v.Options {
			if _, ok := r.options[value]; !ok {
				return fmt.Errorf("%q is not an option of this question", value)
			}
			if seen[value] {
				return fmt.Errorf("%q selected more than once", value)
			}
			seen[value] = true
		}
		return nil
	}}
}

func booleanRules(r *QuestionRules) []Rule {
	if !r.Required {
		return nil
	}
	return []Rule{{Name: "required", Check: func(v AnswerValue) error {
		if !v.Present {
			return fmt.Errorf("is required")
		}
		return nil
	}}}
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
