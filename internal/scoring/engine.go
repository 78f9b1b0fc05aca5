// Package scoring computes quiz scores from submitted answers.
package scoring

import (
	"math"

	"lms-quiz-service/internal/domain"
)

// DefaultPassThreshold is the percentage used by learner self-tests.
const DefaultPassThreshold = 30

// Option configures an Engine.
type Option func(*Engine)

// WithAutoGrade enables exact-match grading of short-answer questions.
// Without it short-answer items wait for an instructor.
func WithAutoGrade(enabled bool) Option {
	return func(e *Engine) { e.autoGrade = enabled }
}

// Engine scores submissions. The zero value leaves short answers to manual grading.
type Engine struct {
	autoGrade bool
}

func NewEngine(opts ...Option) Engine {
	e := Engine{}
	for _, o := range opts {
		o(&e)
	}
	return e
}

// Score grades answers against quiz with the default engine.
func Score(quiz domain.Quiz, answers domain.SubmittedAnswers, passThreshold int) domain.ScoreResult {
	return Engine{}.Score(quiz, answers, passThreshold)
}

// Score grades answers against quiz. Every question counts toward the total;
// matching is exact, case-sensitive and untrimmed.
func (e Engine) Score(quiz domain.Quiz, answers domain.SubmittedAnswers, passThreshold int) domain.ScoreResult {
	return e.ScoreWithMarks(quiz, answers, nil, passThreshold)
}

// ScoreWithMarks is Score with instructor marks for short-answer questions.
// A mark replaces automatic grading of its question and is clamped to
// [0, weight]. Marks for multiple-choice questions are ignored.
func (e Engine) ScoreWithMarks(quiz domain.Quiz, answers domain.SubmittedAnswers, marks map[string]int, passThreshold int) domain.ScoreResult {
	res := domain.ScoreResult{TotalQuestions: len(quiz.Questions)}
	for _, q := range quiz.Questions {
		weight := q.Weight()
		res.TotalPoints += weight
		given, answered := answers[q.ID]

		if q.IsMultipleChoice() {
			if answered && gradable(q) && given == q.CorrectAnswer {
				res.Earned += weight
				res.CorrectCount++
			}
			continue
		}

		if mark, ok := marks[q.ID]; ok {
			res.Earned += clampMark(mark, weight)
			continue
		}
		switch {
		case e.autoGrade:
			if answered && q.CorrectAnswer != "" && given == q.CorrectAnswer {
				res.Earned += weight
			}
		case answered && given != "":
			res.PendingReview++
		}
	}
	res.Percentage = Percentage(res.Earned, res.TotalPoints)
	res.Passed = res.Percentage >= passThreshold
	return res
}

// Percentage rounds 100*earned/total half-up into [0,100]; 0 when total is 0.
func Percentage(earned, total int) int {
	if total <= 0 || earned <= 0 {
		return 0
	}
	pct := math.Floor(100*float64(earned)/float64(total) + 0.5)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func clampMark(mark, weight int) int {
	switch {
	case mark < 0:
		return 0
	case mark > weight:
		return weight
	default:
		return mark
	}
}

// gradable requires the answer key to be one of the offered options.
func gradable(q domain.Question) bool {
	if q.CorrectAnswer == "" {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}
