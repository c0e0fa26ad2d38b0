package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/SAP-F-2025/form-service/internal/errors"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/shopspring/decimal"
)

const (
	BooleanTrueLabel  = "Sí"
	BooleanFalseLabel = "No"
)

// ===== ANALYTICS SUMMARY TYPES =====

type OptionCount struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RatingBucket struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type RatingSummary struct {
	Average      float64        `json:"average"`
	Count        int            `json:"count"`
	Distribution []RatingBucket `json:"distribution"`
}

type NumericSummary struct {
	Average float64  `json:"average"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Count   int      `json:"count"`
}

type BooleanSummary struct {
	TrueCount    int           `json:"true_count"`
	FalseCount   int           `json:"false_count"`
	Distribution []OptionCount `json:"distribution"`
}

type TextSummary struct {
	Count int `json:"count"`
}

// QuestionSummary is the analytics view of one question. Exactly one of Options, Rating,
// Numeric, Boolean or Text is set, chosen by Kind.
type QuestionSummary struct {
	QuestionID     uint                `json:"question_id"`
	QuestionText   string              `json:"question_text"`
	QuestionType   models.QuestionType `json:"question_type"`
	OrderIndex     int                 `json:"order_index"`
	Kind           models.SummaryKind  `json:"kind"`
	Options        []OptionCount       `json:"options,omitempty"`
	Rating         *RatingSummary      `json:"rating,omitempty"`
	Numeric        *NumericSummary     `json:"numeric,omitempty"`
	Boolean        *BooleanSummary     `json:"boolean,omitempty"`
	Text           *TextSummary        `json:"text,omitempty"`
	SkippedAnswers int                 `json:"skipped_answers"`
}

// FormAnalytics is the envelope served for a form.
type FormAnalytics struct {
	FormID             uint              `json:"form_id"`
	Title              string            `json:"title"`
	TotalResponses     int               `json:"total_responses"`
	AnonymousResponses int               `json:"anonymous_responses"`
	Questions          []QuestionSummary `json:"questions"`
}

// ===== AGGREGATOR =====

// ResponseAggregator summarizes a snapshot of responses. The output depends only on the
// form and the set of responses, never on their order.
type ResponseAggregator struct {
	logger *ServiceLogger
}

// NewResponseAggregator accepts a nil logger; drift is then counted but not logged.
func NewResponseAggregator(logger *ServiceLogger) *ResponseAggregator {
	return &ResponseAggregator{logger: logger}
}

// AggregateForm wraps AggregateResponses with the response totals.
func (a *ResponseAggregator) AggregateForm(ctx context.Context, form *models.Form, responses []models.Response) *FormAnalytics {
	out := &FormAnalytics{
		FormID:         form.ID,
		Title:          form.Title,
		TotalResponses: len(responses),
		Questions:      a.AggregateResponses(ctx, form, responses),
	}
	for i := range responses {
		if responses[i].IsAnonymous {
			out.AnonymousResponses++
		}
	}
	return out
}

// AggregateResponses returns one summary per question in order. Answers whose recorded
// type no longer fits the question are skipped for that question only.
func (a *ResponseAggregator) AggregateResponses(ctx context.Context, form *models.Form, responses []models.Response) []QuestionSummary {
	questions := make([]*models.Question, len(form.Questions))
	for i := range form.Questions {
		questions[i] = &form.Questions[i]
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })

	summaries := make([]QuestionSummary, 0, len(questions))
	for _, q := range questions {
		answers, skipped := a.collectAnswers(ctx, q, responses)

		summary := QuestionSummary{
			QuestionID:     q.ID,
			QuestionText:   q.QuestionText,
			QuestionType:   q.QuestionType,
			OrderIndex:     q.OrderIndex,
			Kind:           q.Requirements().Summary,
			SkippedAnswers: skipped,
		}

		switch summary.Kind {
		case models.SummaryOptions:
			summary.Options = summarizeOptions(q, answers)
		case models.SummaryRating:
			summary.Rating = summarizeRating(answers)
		case models.SummaryNumeric:
			summary.Numeric = summarizeNumeric(answers)
		case models.SummaryBoolean:
			summary.Boolean = summarizeBoolean(answers)
		default:
			summary.Text = summarizeText(answers)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (a *ResponseAggregator) collectAnswers(ctx context.Context, q *models.Question, responses []models.Response) ([]*models.Answer, int) {
	req := q.Requirements()
	var (
		answers []*models.Answer
		skipped int
	)

	for i := range responses {
		answer, ok := responses[i].AnswerFor(q.ID)
		if !ok {
			continue
		}

		recorded := answer.QuestionType
		if recorded == "" {
			recorded = q.QuestionType
		}
		if !recorded.IsValid() || recorded.Requirements().Summary != req.Summary || !answer.HasPayload(req.Payload) {
			skipped++
			if a.logger != nil {
				a.logger.LogSchemaDrift(ctx, &apperrors.SchemaDriftError{
					QuestionID:   q.ID,
					ResponseID:   responses[i].ID,
					AnswerType:   string(recorded),
					QuestionType: string(q.QuestionType),
				})
			}
			continue
		}
		answers = append(answers, answer)
	}
	return answers, skipped
}

func summarizeOptions(q *models.Question, answers []*models.Answer) []OptionCount {
	counts := make(map[string]int)
	for _, answer := range answers {
		seen := make(map[string]bool, len(answer.SelectedOptions))
		for _, value := range answer.SelectedOptions {
			if seen[value] {
				continue
			}
			seen[value] = true
			counts[value]++
		}
	}

	type entry struct {
		OptionCount
		order int
		known bool
	}

	entries := make([]entry, 0, len(q.Options)+len(counts))
	for _, opt := range q.Options {
		entries = append(entries, entry{
			OptionCount: OptionCount{Value: opt.OptionValue, Name: opt.OptionText, Count: counts[opt.OptionValue]},
			order:       opt.OrderIndex,
			known:       true,
		})
		delete(counts, opt.OptionValue)
	}
	// Values selected before an option was removed keep their raw value as the name.
	for value, count := range counts {
		entries = append(entries, entry{OptionCount: OptionCount{Value: value, Name: value, Count: count}})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Count != b.Count:
			return a.Count > b.Count
		case a.known != b.known:
			return a.known
		case a.known && a.order != b.order:
			return a.order < b.order
		default:
			return a.Value < b.Value
		}
	})

	out := make([]OptionCount, len(entries))
	for i, e := range entries {
		out[i] = e.OptionCount
	}
	return out
}

func summarizeRating(answers []*models.Answer) *RatingSummary {
	values := numericValues(answers)
	counts := make(map[int]int)
	for _, v := range values {
		counts[int(v.IntPart())]++
	}

	distribution := make([]RatingBucket, 0, len(counts))
	for value, count := range counts {
		distribution = append(distribution, RatingBucket{Value: value, Label: RatingLabel(value), Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool { return distribution[i].Value < distribution[j].Value })

	return &RatingSummary{
		Average:      mean(values, 1),
		Count:        len(values),
		Distribution: distribution,
	}
}

func summarizeNumeric(answers []*models.Answer) *NumericSummary {
	values := numericValues(answers)
	summary := &NumericSummary{Average: mean(values, 2), Count: len(values)}
	if len(values) == 0 {
		return summary
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v.LessThan(lo) {
			lo = v
		}
		if v.GreaterThan(hi) {
			hi = v
		}
	}
	minValue, _ := lo.Float64()
	maxValue, _ := hi.Float64()
	summary.Min = &minValue
	summary.Max = &maxValue
	return summary
}

func summarizeBoolean(answers []*models.Answer) *BooleanSummary {
	summary := &BooleanSummary{}
	for _, answer := range answers {
		if *answer.BooleanAnswer {
			summary.TrueCount++
		} else {
			summary.FalseCount++
		}
	}
	summary.Distribution = []OptionCount{
		{Value: "true", Name: BooleanTrueLabel, Count: summary.TrueCount},
		{Value: "false", Name: BooleanFalseLabel, Count: summary.FalseCount},
	}
	return summary
}

func summarizeText(answers []*models.Answer) *TextSummary {
	summary := &TextSummary{}
	for _, answer := range answers {
		if answer.TextAnswer != nil && strings.TrimSpace(*answer.TextAnswer) != "" {
			summary.Count++
		}
	}
	return summary
}

// RatingLabel renders a rating value for charts, e.g. "1 estrella", "4 estrellas".
func RatingLabel(value int) string {
	if value == 1 {
		return "1 estrella"
	}
	return fmt.Sprintf("%d estrellas", value)
}

func numericValues(answers []*models.Answer) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(answers))
	for _, answer := range answers {
		values = append(values, decimal.NewFromFloat(*answer.NumberAnswer))
	}
	return values
}

// mean sums exactly and rounds half away from zero. An empty population averages to zero.
func mean(values []decimal.Decimal, places int32) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	avg, _ := sum.DivRound(decimal.NewFromInt(int64(len(values))), places).Float64()
	return avg
}
