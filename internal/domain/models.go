package domain

import "time"

// DefaultTimeLimitMinutes applies when a quiz does not declare a time limit.
const DefaultTimeLimitMinutes = 10

// Question is a single quiz item. Empty Options means a short-answer question.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Points        int      `json:"points,omitempty"` // defaults to 1 if zero
}

// IsMultipleChoice reports whether the question offers choices.
func (q Question) IsMultipleChoice() bool {
	return len(q.Options) > 0
}

// MaxQuestionPoints caps a single question's weight.
const MaxQuestionPoints = 1_000_000

// Weight returns the point weight, defaulting to 1 and capped at MaxQuestionPoints.
func (q Question) Weight() int {
	switch {
	case q.Points <= 0:
		return 1
	case q.Points > MaxQuestionPoints:
		return MaxQuestionPoints
	default:
		return q.Points
	}
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	TopicName        string     `json:"topicName,omitempty"`
	Difficulty       Difficulty `json:"difficulty,omitempty"`
	TimeLimitMinutes int        `json:"timeLimit"`
	Questions        []Question `json:"questions"`
}

// TimeLimit returns the declared time limit, defaulting to ten minutes.
func (q Quiz) TimeLimit() time.Duration {
	minutes := q.TimeLimitMinutes
	if minutes <= 0 {
		minutes = DefaultTimeLimitMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// View strips answer keys so the quiz can be handed to a learner.
func (q Quiz) View() QuizView {
	questions := make([]QuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, QuestionView{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: question.Options,
			Points:  question.Weight(),
		})
	}
	return QuizView{
		ID:               q.ID,
		Title:            q.Title,
		TopicName:        q.TopicName,
		Difficulty:       q.Difficulty,
		TimeLimitMinutes: int(q.TimeLimit() / time.Minute),
		Questions:        questions,
	}
}

// QuestionView is a question without its answer key.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options,omitempty"`
	Points  int      `json:"points"`
}

// QuizView is the learner-facing projection of a Quiz.
type QuizView struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	TopicName        string         `json:"topicName,omitempty"`
	Difficulty       Difficulty     `json:"difficulty,omitempty"`
	TimeLimitMinutes int            `json:"timeLimit"`
	Questions        []QuestionView `json:"questions"`
}

// SubmittedAnswers maps question IDs to the learner's chosen or typed value.
type SubmittedAnswers map[string]string

// ScoreResult is the outcome of scoring one submission.
type ScoreResult struct {
	Earned         int  `json:"earned"`
	TotalPoints    int  `json:"totalPoints"`
	Percentage     int  `json:"score"`
	Passed         bool `json:"passed"`
	CorrectCount   int  `json:"correctCount"`
	TotalQuestions int  `json:"totalQuestions"`
	PendingReview  int  `json:"pendingReview"`
}

// Status is COMPLETED unless some answers still wait for manual grading.
func (r ScoreResult) Status() AttemptStatus {
	if r.PendingReview > 0 {
		return StatusPendingReview
	}
	return StatusCompleted
}

// AttemptStatus is the lifecycle state of an attempt.
type AttemptStatus string

const (
	StatusPending       AttemptStatus = "PENDING"
	StatusInProgress    AttemptStatus = "IN_PROGRESS"
	StatusCompleted     AttemptStatus = "COMPLETED"
	StatusPendingReview AttemptStatus = "PENDING_REVIEW"
)

// Attempt is one learner's submission against one quiz.
type Attempt struct {
	ID        string        `json:"attemptId"`
	QuizID    string        `json:"quizId"`
	QuizTitle string        `json:"quizTitle"`
	UserID    string        `json:"userId,omitempty"`
	Username  string        `json:"username,omitempty"`
	Score     *int          `json:"score"` // nil while ungraded
	TopicName string        `json:"topicName,omitempty"`
	Status    AttemptStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	// Answers as submitted; Marks holds instructor marks per short-answer question.
	Answers SubmittedAnswers `json:"answers,omitempty"`
	Marks   map[string]int   `json:"marks,omitempty"`
}

// Graded reports whether the attempt carries a score.
func (a Attempt) Graded() bool {
	return a.Score != nil
}

// Clone returns a copy that shares no maps or pointers with a.
func (a Attempt) Clone() Attempt {
	out := a
	if a.Score != nil {
		v := *a.Score
		out.Score = &v
	}
	if a.Answers != nil {
		out.Answers = make(SubmittedAnswers, len(a.Answers))
		for k, v := range a.Answers {
			out.Answers[k] = v
		}
	}
	if a.Marks != nil {
		out.Marks = make(map[string]int, len(a.Marks))
		for k, v := range a.Marks {
			out.Marks[k] = v
		}
	}
	return out
}

// Question types shown to graders.
const (
	QuestionTypeMCQ         = "MCQ"
	QuestionTypeShortAnswer = "SHORT_ANSWER"
)

// GradingItem is one question of a submitted attempt as an instructor sees it.
type GradingItem struct {
	QuestionID  string `json:"questionId"`
	Question    string `json:"questionText"`
	Type        string `json:"questionType"`
	Answer      string `json:"answerText"`
	ModelAnswer string `json:"modelAnswer"`
	MaxPoints   int    `json:"maxPoints"`
	Marks       int    `json:"marks"`
	IsGraded    bool   `json:"isGraded"`
}

// AttemptReview is an attempt with its per-question grading state.
type AttemptReview struct {
	Attempt Attempt       `json:"attempt"`
	Items   []GradingItem `json:"items"`
}

// LabeledAttempt is an Attempt stamped with its per-quiz ordinal.
type LabeledAttempt struct {
	Attempt
	AttemptLabel string `json:"attemptLabel"`
	Rank         int    `json:"attemptNumber"`
}

// Submission pairs a recorded attempt with its score.
type Submission struct {
	Attempt Attempt     `json:"attempt"`
	Result  ScoreResult `json:"result"`
}

// Difficulty is a quiz difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Level is the performance band a learner sits in.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Classification splits topics into strengths and weaknesses.
type Classification struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// TopicPerformance is one topic's average score.
type TopicPerformance struct {
	Topic    string `json:"topic"`
	AvgScore int    `json:"avgScore"`
}

// ProgressPoint is one graded attempt on a score trend line.
type ProgressPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// StudentStats is the adaptive summary shown on a learner dashboard.
type StudentStats struct {
	TotalAttempts    int                `json:"totalAttempts"`
	AverageScore     int                `json:"averageScore"`
	Level            Level              `json:"level"`
	NextDifficulty   Difficulty         `json:"nextDifficulty"`
	WeakTopic        string             `json:"weakTopic,omitempty"`
	Strengths        []string           `json:"strengths"`
	Weaknesses       []string           `json:"weakTopics"`
	TopicPerformance []TopicPerformance `json:"topicPerformance"`
	Progression      []ProgressPoint    `json:"progression"`
}

// StudentReport aggregates one learner's attempts for instructors.
type StudentReport struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	TotalAttempts int    `json:"totalAttempts"`
	GradedCount   int    `json:"gradedCount"`
	PendingCount  int    `json:"pendingCount"`
	AverageScore  int    `json:"avgScore"`
}

// StudentDetails is the instructor drill-down for one learner.
type StudentDetails struct {
	UserID         string           `json:"userId"`
	TotalQuizzes   int              `json:"totalQuizzes"`
	AverageScore   int              `json:"avgScore"`
	CompletedCount int              `json:"completedCount"`
	QuizHistory    []LabeledAttempt `json:"quizHistory"`
	Analytics      StudentStats     `json:"analytics"`
}

// LobbyQuiz is a quiz card in the learner lobby.
type LobbyQuiz struct {
	QuizView
	Status      AttemptStatus `json:"status"`
	Recommended bool          `json:"recommended"`
}
