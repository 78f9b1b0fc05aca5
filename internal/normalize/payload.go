// Package normalize maps loosely typed API payloads onto domain records.
// Backends disagree on casing (time_limit vs timeLimit), send numbers as
// strings and leave scores null; everything is resolved here before the
// scoring and labeling code sees it.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"lms-quiz-service/internal/domain"
)

// Record is one decoded JSON object.
type Record map[string]any

// first returns the first present, non-nil value among keys.
func (r Record) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Record) str(keys ...string) string {
	v, ok := r.first(keys...)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

func (r Record) integer(keys ...string) int {
	v, ok := r.first(keys...)
	if !ok {
		return 0
	}
	return cast.ToInt(v)
}

// DecodeQuiz parses a quiz JSON document.
func DecodeQuiz(data []byte) (domain.Quiz, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz: %w", err)
	}
	return Quiz(rec), nil
}

// Quiz maps a raw quiz record.
func Quiz(r Record) domain.Quiz {
	quiz := domain.Quiz{
		ID:               r.str("id", "quizId", "quiz_id"),
		Title:            r.str("title", "quizTitle", "quiz_title"),
		TopicName:        r.str("topicName", "topic_name", "topic"),
		Difficulty:       Difficulty(r.str("difficulty")),
		TimeLimitMinutes: r.integer("timeLimit", "time_limit"),
	}
	if quiz.TimeLimitMinutes <= 0 {
		quiz.TimeLimitMinutes = domain.DefaultTimeLimitMinutes
	}
	if raw, ok := r.first("questions"); ok {
		for i, item := range cast.ToSlice(raw) {
			q := Question(toRecord(item))
			if q.ID == "" {
				q.ID = cast.ToString(i + 1)
			}
			quiz.Questions = append(quiz.Questions, q)
		}
	}
	return quiz
}

// Question maps a raw question record.
func Question(r Record) domain.Question {
	q := domain.Question{
		ID:            r.str("id", "questionId", "question_id"),
		Prompt:        r.str("question", "question_text", "questionText", "prompt"),
		CorrectAnswer: r.str("correctAnswer", "correct_answer", "answer"),
		Points:        r.integer("points", "marks"),
	}
	if raw, ok := r.first("options"); ok {
		for _, opt := range cast.ToSlice(raw) {
			q.Options = append(q.Options, cast.ToString(opt))
		}
	}
	return q
}

// Difficulty canonicalises a difficulty string, defaulting to Medium.
func Difficulty(raw string) domain.Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy", "beginner":
		return domain.DifficultyEasy
	case "hard", "advanced":
		return domain.DifficultyHard
	default:
		return domain.DifficultyMedium
	}
}

// Answers maps a raw {questionId: value} object; non-string values are stringified.
func Answers(raw map[string]any) domain.SubmittedAnswers {
	out := make(domain.SubmittedAnswers, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		out[k] = cast.ToString(v)
	}
	return out
}

// DecodeAttempts parses a JSON array of attempt records.
func DecodeAttempts(data []byte) ([]domain.Attempt, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(recs))
	for _, r := range recs {
		out = append(out, Attempt(r))
	}
	return out, nil
}

// Attempt maps a raw attempt record. A missing or unparsable timestamp is left
// zero so it sorts first.
func Attempt(r Record) domain.Attempt {
	a := domain.Attempt{
		ID:        r.str("attemptId", "attempt_id", "id"),
		QuizID:    r.str("quizId", "quiz_id"),
		QuizTitle: r.str("quizTitle", "quiz_title", "title"),
		UserID:    r.str("userId", "user_id"),
		Username:  r.str("username", "user_name"),
		TopicName: r.str("topicName", "topic_name", "topic"),
		Status:    Status(r.str("status")),
	}
	if v, ok := r.first("score"); ok {
		if s, err := cast.ToIntE(v); err == nil {
			a.Score = &s
		}
	}
	if v, ok := r.first("createdAt", "created_at", "date", "timestamp"); ok {
		if ts, err := cast.ToTimeE(v); err == nil {
			a.CreatedAt = ts.UTC()
		}
	}
	if v, ok := r.first("answers"); ok {
		if m := cast.ToStringMap(v); len(m) > 0 {
			a.Answers = Answers(m)
		}
	}
	if v, ok := r.first("marks"); ok {
		if m, err := cast.ToStringMapIntE(v); err == nil && len(m) > 0 {
			a.Marks = m
		}
	}
	return a
}

// Status canonicalises an attempt status, defaulting to PENDING.
func Status(raw string) domain.AttemptStatus {
	s := domain.AttemptStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case domain.StatusInProgress, domain.StatusCompleted, domain.StatusPendingReview:
		return s
	default:
		return domain.StatusPending
	}
}

func toRecord(v any) Record {
	switch m := v.(type) {
	case map[string]any:
		return Record(m)
	case Record:
		return m
	default:
		return Record(cast.ToStringMap(v))
	}
}
