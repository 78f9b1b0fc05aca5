package scoring_test

import (
	"math"
	"testing"

	"lms-quiz-service/internal/domain"
	"lms-quiz-service/internal/scoring"
)

func TestScoreEmptyQuiz(t *testing.T) {
	res := scoring.Score(domain.Quiz{ID: "empty"}, nil, scoring.DefaultPassThreshold)
	if res.TotalPoints != 0 || res.Percentage != 0 {
		t.Fatalf("expected zero total and percentage, got %+v", res)
	}
	if res.Passed {
		t.Fatalf("empty quiz must not pass a 30%% threshold")
	}
	if res.TotalQuestions != 0 {
		t.Fatalf("expected no questions, got %d", res.TotalQuestions)
	}
}

func TestScoreAllCorrectAndAllWrong(t *testing.T) {
	quiz := threeQuestionQuiz()

	all := domain.SubmittedAnswers{"q1": "4", "q2": "Paris", "q3": "Blue"}
	res := scoring.Score(quiz, all, 30)
	if res.Percentage != 100 || !res.Passed || res.CorrectCount != 3 {
		t.Fatalf("expected full marks, got %+v", res)
	}

	wrong := domain.SubmittedAnswers{"q1": "3", "q2": "Rome", "q3": "Red"}
	if res := scoring.Score(quiz, wrong, 30); res.Percentage != 0 || res.Passed {
		t.Fatalf("expected zero for wrong answers, got %+v", res)
	}
	if res := scoring.Score(quiz, domain.SubmittedAnswers{}, 30); res.Percentage != 0 || res.Earned != 0 {
		t.Fatalf("expected zero for empty submission, got %+v", res)
	}
}

func TestScoreRounding(t *testing.T) {
	quiz := threeQuestionQuiz()
	cases := []struct {
		name    string
		answers domain.SubmittedAnswers
		want    int
	}{
		{"one of three", domain.SubmittedAnswers{"q1": "4"}, 33},
		{"two of three", domain.SubmittedAnswers{"q1": "4", "q2": "Paris"}, 67},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoring.Score(quiz, tc.answers, 30).Percentage; got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestPercentageHalfUp(t *testing.T) {
	if got := scoring.Percentage(1, 8); got != 13 { // 12.5
		t.Fatalf("expected 13, got %d", got)
	}
	if got := scoring.Percentage(5, 0); got != 0 {
		t.Fatalf("expected 0 for zero total, got %d", got)
	}
}

func TestPercentageStaysInRange(t *testing.T) {
	if got := scoring.Percentage(math.MaxInt, math.MaxInt); got != 100 {
		t.Fatalf("expected 100 for huge equal values, got %d", got)
	}
	if got := scoring.Percentage(7, 3); got != 100 {
		t.Fatalf("earned above total should clamp to 100, got %d", got)
	}
	if got := scoring.Percentage(-4, 10); got != 0 {
		t.Fatalf("negative earned should clamp to 0, got %d", got)
	}
}

func TestScoreHugeWeightsAreCapped(t *testing.T) {
	quiz := domain.Quiz{
		ID: "huge",
		Questions: []domain.Question{
			{ID: "q1", Options: []string{"a", "b"}, CorrectAnswer: "a", Points: 1 << 60},
		},
	}
	res := scoring.Score(quiz, domain.SubmittedAnswers{"q1": "a"}, 30)
	if res.Percentage != 100 || !res.Passed {
		t.Fatalf("fully correct must be 100%%, got %+v", res)
	}
	if res.TotalPoints != domain.MaxQuestionPoints {
		t.Fatalf("expected weight capped at %d, got %d", domain.MaxQuestionPoints, res.TotalPoints)
	}

	quiz.Questions = append(quiz.Questions, domain.Question{ID: "q2", Options: []string{"x", "y"}, CorrectAnswer: "y", Points: 1 << 62})
	res = scoring.Score(quiz, domain.SubmittedAnswers{"q1": "a"}, 30)
	if res.Percentage != 50 {
		t.Fatalf("expected 50%% with two capped weights, got %+v", res)
	}
}

func TestScoreWithMarks(t *testing.T) {
	quiz := domain.Quiz{
		ID: "graded",
		Questions: []domain.Question{
			{ID: "m1", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			{ID: "s1", Points: 4},
			{ID: "s2", Points: 2},
		},
	}
	answers := domain.SubmittedAnswers{"m1": "a", "s1": "essay", "s2": "another essay"}

	partial := scoring.NewEngine().ScoreWithMarks(quiz, answers, map[string]int{"s1": 3}, 30)
	if partial.PendingReview != 1 || partial.Earned != 4 {
		t.Fatalf("expected one item still pending and 4 earned, got %+v", partial)
	}

	full := scoring.NewEngine().ScoreWithMarks(quiz, answers, map[string]int{"s1": 3, "s2": 9, "m1": 0}, 30)
	if full.PendingReview != 0 || full.Status() != domain.StatusCompleted {
		t.Fatalf("expected every item graded, got %+v", full)
	}
	// s2 clamps to its weight; the mark on the multiple-choice item is ignored
	if full.Earned != 6 || full.Percentage != 86 {
		t.Fatalf("expected 6/7 = 86%%, got %+v", full)
	}
}

func TestScoreExactMatchIsCaseSensitive(t *testing.T) {
	quiz := threeQuestionQuiz()
	res := scoring.Score(quiz, domain.SubmittedAnswers{"q2": "paris", "q3": " Blue"}, 30)
	if res.Earned != 0 {
		t.Fatalf("expected no credit for near matches, got %+v", res)
	}
}

func TestScoreWeightsAndUngradableItems(t *testing.T) {
	quiz := domain.Quiz{
		ID: "weights",
		Questions: []domain.Question{
			{ID: "q1", Options: []string{"a", "b"}, CorrectAnswer: "a", Points: 3},
			// answer key is not one of the options, so it can never earn
			{ID: "q2", Options: []string{"a", "b"}, CorrectAnswer: "c"},
			// missing key still counts toward the total
			{ID: "q3", Options: []string{"a", "b"}},
		},
	}
	res := scoring.Score(quiz, domain.SubmittedAnswers{"q1": "a", "q2": "c", "q3": ""}, 50)
	if res.TotalPoints != 5 || res.Earned != 3 {
		t.Fatalf("expected 3/5, got %d/%d", res.Earned, res.TotalPoints)
	}
	if res.Percentage != 60 || !res.Passed {
		t.Fatalf("expected 60%% passing, got %+v", res)
	}
}

func TestScoreShortAnswerModes(t *testing.T) {
	quiz := domain.Quiz{
		ID: "mixed",
		Questions: []domain.Question{
			{ID: "q1", Options: []string{"yes", "no"}, CorrectAnswer: "yes"},
			{ID: "q2", Prompt: "Name the capital of France", CorrectAnswer: "Paris"},
		},
	}
	answers := domain.SubmittedAnswers{"q1": "yes", "q2": "Paris"}

	manual := scoring.Score(quiz, answers, 30)
	if manual.Percentage != 50 || manual.PendingReview != 1 {
		t.Fatalf("expected short answer left for review, got %+v", manual)
	}
	if manual.Status() != domain.StatusPendingReview {
		t.Fatalf("expected pending review status, got %s", manual.Status())
	}

	auto := scoring.NewEngine(scoring.WithAutoGrade(true)).Score(quiz, answers, 30)
	if auto.Percentage != 100 || auto.PendingReview != 0 {
		t.Fatalf("expected auto-graded full marks, got %+v", auto)
	}
	if auto.CorrectCount != 1 {
		t.Fatalf("correct count only tracks multiple choice, got %d", auto.CorrectCount)
	}
	if auto.Status() != domain.StatusCompleted {
		t.Fatalf("expected completed status, got %s", auto.Status())
	}

	fuzzy := scoring.NewEngine(scoring.WithAutoGrade(true)).Score(quiz, domain.SubmittedAnswers{"q2": "paris"}, 30)
	if fuzzy.Earned != 0 {
		t.Fatalf("short answers must match exactly, got %+v", fuzzy)
	}
}

func TestScoreThresholdIsConfigurable(t *testing.T) {
	quiz := threeQuestionQuiz()
	answers := domain.SubmittedAnswers{"q1": "4"}
	if !scoring.Score(quiz, answers, 30).Passed {
		t.Fatalf("33%% should pass at 30")
	}
	if scoring.Score(quiz, answers, 34).Passed {
		t.Fatalf("33%% should fail at 34")
	}
}

func threeQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Basics",
		Questions: []domain.Question{
			{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
			{ID: "q2", Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
			{ID: "q3", Prompt: "Colour of the sky?", Options: []string{"Red", "Blue"}, CorrectAnswer: "Blue"},
		},
	}
}
