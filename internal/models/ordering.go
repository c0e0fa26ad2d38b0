package models

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidOrder   = errors.New("invalid question order")
	ErrOptionNotFound = errors.New("option not found")
	ErrNoOptions      = errors.New("question type has no options")
)

// Every mutation below builds the next ordered slice off to the side and swaps it in only once
// it is complete, so a caller never observes duplicated or missing indexes.

// ReindexQuestions rewrites OrderIndex from slice position.
func ReindexQuestions(questions []Question) {
	for i := range questions {
		questions[i].OrderIndex = i
	}
}

// ReindexOptions rewrites option OrderIndex from slice position.
func ReindexOptions(options []QuestionOption) {
	for i := range options {
		options[i].OrderIndex = i
	}
}

// SortQuestions orders questions (and their options) by OrderIndex, as loaded from storage.
func SortQuestions(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderIndex < questions[j].OrderIndex
	})
	for i := range questions {
		opts := questions[i].Options
		sort.SliceStable(opts, func(a, b int) bool {
			return opts[a].OrderIndex < opts[b].OrderIndex
		})
	}
}

// ValidateQuestionOrder checks that OrderIndex values form the permutation 0..n-1.
func ValidateQuestionOrder(questions []Question) error {
	seen := make([]bool, len(questions))
	for i := range questions {
		idx := questions[i].OrderIndex
		if idx < 0 || idx >= len(questions) {
			return fmt.Errorf("%w: index %d out of range 0..%d", ErrInvalidOrder, idx, len(questions)-1)
		}
		if seen[idx] {
			return fmt.Errorf("%w: index %d used more than once", ErrInvalidOrder, idx)
		}
		seen[idx] = true
	}
	return nil
}

// ReorderQuestions replaces the question list with the permutation given by questionIDs.
// The list must name every persisted question exactly once.
func (f *Form) ReorderQuestions(questionIDs []uint) error {
	if len(questionIDs) != len(f.Questions) {
		return fmt.Errorf("%w: expected %d question ids, got %d", ErrInvalidOrder, len(f.Questions), len(questionIDs))
	}

	byID := make(map[uint]Question, len(f.Questions))
	for _, q := range f.Questions {
		if q.ID == 0 {
			return fmt.Errorf("%w: unsaved questions cannot be reordered by id", ErrInvalidOrder)
		}
		byID[q.ID] = q
	}

	next := make([]Question, 0, len(questionIDs))
	used := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		q, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: question %d does not belong to form", ErrInvalidOrder, id)
		}
		if used[id] {
			return fmt.Errorf("%w: question %d listed twice", ErrInvalidOrder, id)
		}
		used[id] = true
		next = append(next, q)
	}

	ReindexQuestions(next)
	f.Questions = next
	return nil
}

// MoveQuestion moves the question at position from to position to, shifting the rest.
func (f *Form) MoveQuestion(from, to int) error {
	n := len(f.Questions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d outside 0..%d", ErrInvalidOrder, from, to, n-1)
	}

	next := make([]Question, 0, n)
	next = append(next, f.Questions[:from]...)
	next = append(next, f.Questions[from+1:]...)
	next = append(next[:to], append([]Question{f.Questions[from]}, next[to:]...)...)

	ReindexQuestions(next)
	f.Questions = next
	return nil
}

// InsertQuestion places q at position at (len(questions) appends).
func (f *Form) InsertQuestion(q Question, at int) error {
	n := len(f.Questions)
	if at < 0 || at > n {
		return fmt.Errorf("%w: insert position %d outside 0..%d", ErrInvalidOrder, at, n)
	}

	next := make([]Question, 0, n+1)
	next = append(next, f.Questions[:at]...)
	next = append(next, q)
	next = append(next, f.Questions[at:]...)

	ReindexQuestions(next)
	f.Questions = next
	return nil
}

// RemoveQuestion drops the question at position at and closes the gap.
func (f *Form) RemoveQuestion(at int) (Question, error) {
	n := len(f.Questions)
	if at < 0 || at >= n {
		return Question{}, fmt.Errorf("%w: remove position %d outside 0..%d", ErrInvalidOrder, at, n-1)
	}

	removed := f.Questions[at]
	next := make([]Question, 0, n-1)
	next = append(next, f.Questions[:at]...)
	next = append(next, f.Questions[at+1:]...)

	ReindexQuestions(next)
	f.Questions = next
	return removed, nil
}

// MoveOption reorders the options of a choice question.
func (q *Question) MoveOption(from, to int) error {
	n := len(q.Options)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: option move %d -> %d outside 0..%d", ErrInvalidOrder, from, to, n-1)
	}

	next := make([]QuestionOption, 0, n)
	next = append(next, q.Options[:from]...)
	next = append(next, q.Options[from+1:]...)
	next = append(next[:to], append([]QuestionOption{q.Options[from]}, next[to:]...)...)

	ReindexOptions(next)
	q.Options = next
	return nil
}

// SetOptionCorrect marks or unmarks an option as correct. On single-choice questions marking
// an option clears every other one in the same step.
func (q *Question) SetOptionCorrect(value string, correct bool) error {
	if !q.Requirements().NeedsOptions {
		return fmt.Errorf("%w: %s", ErrNoOptions, q.QuestionType)
	}
	if _, ok := q.OptionByValue(value); !ok {
		return fmt.Errorf("%w: %q", ErrOptionNotFound, value)
	}

	exclusive := q.QuestionType == SingleChoice && correct
	next := make([]QuestionOption, len(q.Options))
	copy(next, q.Options)
	for i := range next {
		switch {
		case next[i].OptionValue == value:
			next[i].IsCorrect = correct
		case exclusive:
			next[i].IsCorrect = false
		}
	}

	q.Options = next
	q.CorrectOptionIDs = correctValues(next)
	return nil
}

func correctValues(options []QuestionOption) []string {
	var values []string
	for _, opt := range options {
		if opt.IsCorrect {
			values = append(values, opt.OptionValue)
		}
	}
	return values
}
