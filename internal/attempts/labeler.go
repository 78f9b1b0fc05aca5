// Package attempts numbers quiz attempts per quiz for history views.
package attempts

import (
	"sort"

	"lms-quiz-service/internal/domain"
)

// UnknownQuiz groups attempts that carry neither a quiz ID nor a title.
const UnknownQuiz = "unknown"

// KeyFunc picks the grouping key for an attempt.
type KeyFunc func(domain.Attempt) string

// ByQuiz groups by quiz ID, falling back to the title and then UnknownQuiz.
// Two quizzes without IDs that share a title are counted together.
func ByQuiz(a domain.Attempt) string {
	switch {
	case a.QuizID != "":
		return "id:" + a.QuizID
	case a.QuizTitle != "":
		return "title:" + a.QuizTitle
	default:
		return UnknownQuiz
	}
}

// ByTitle groups by quiz title, falling back to UnknownQuiz.
func ByTitle(a domain.Attempt) string {
	if a.QuizTitle != "" {
		return a.QuizTitle
	}
	return UnknownQuiz
}

// Label stamps each attempt with its ordinal within its quiz. Input must be in
// ascending chronological order and output keeps that order.
func Label(attempts []domain.Attempt) []domain.LabeledAttempt {
	return LabelBy(attempts, ByQuiz)
}

// LabelBy is Label with an explicit grouping key.
func LabelBy(attempts []domain.Attempt, key KeyFunc) []domain.LabeledAttempt {
	if key == nil {
		key = ByQuiz
	}
	counts := make(map[string]int)
	out := make([]domain.LabeledAttempt, 0, len(attempts))
	for _, a := range attempts {
		k := key(a)
		counts[k]++
		n := counts[k]
		out = append(out, domain.LabeledAttempt{
			Attempt:      a,
			AttemptLabel: AttemptLabel(n),
			Rank:         n,
		})
	}
	return out
}

// LabelAndSortDescending labels attempts and returns them most recent first.
func LabelAndSortDescending(attempts []domain.Attempt) []domain.LabeledAttempt {
	return Reverse(Label(attempts))
}

// Reverse returns a reversed copy of labeled.
func Reverse(labeled []domain.LabeledAttempt) []domain.LabeledAttempt {
	out := make([]domain.LabeledAttempt, len(labeled))
	for i, l := range labeled {
		out[len(labeled)-1-i] = l
	}
	return out
}

// Chronological returns a copy sorted by CreatedAt ascending. Attempts without a
// timestamp sort as the epoch; equal timestamps keep their input order.
func Chronological(attempts []domain.Attempt) []domain.Attempt {
	out := make([]domain.Attempt, len(attempts))
	copy(out, attempts)
	sort.SliceStable(out, func(i, j int) bool {
		return unixOrEpoch(out[i]) < unixOrEpoch(out[j])
	})
	return out
}

func unixOrEpoch(a domain.Attempt) int64 {
	if a.CreatedAt.IsZero() {
		return 0
	}
	return a.CreatedAt.UnixNano()
}
