package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lms-quiz-service/internal/adaptive"
	"lms-quiz-service/internal/attempts"
	"lms-quiz-service/internal/domain"
	"lms-quiz-service/internal/scoring"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizIDs(ctx context.Context) ([]string, error)
}

// AttemptRepository persists submitted attempts.
type AttemptRepository interface {
	Record(ctx context.Context, attempt domain.Attempt) error
	Get(ctx context.Context, attemptID string) (domain.Attempt, error)
	// Update replaces the score, status and marks of an existing attempt.
	Update(ctx context.Context, attempt domain.Attempt) error
	ListByUser(ctx context.Context, userID string) ([]domain.Attempt, error)
	ListAll(ctx context.Context) ([]domain.Attempt, error)
}

// RunRepository abstracts where timed runs live (in-memory, Redis, etc).
type RunRepository interface {
	Put(run *Run)
	Get(runID string) (*Run, bool)
	Delete(runID string)
}

// QuizService contains the quiz-taking and reporting use cases.
type QuizService struct {
	quizzes       QuizRepository
	attempts      AttemptRepository
	runs          RunRepository
	engine        scoring.Engine
	passThreshold int
	now           func() time.Time
	newID         func() string
	log           zerolog.Logger
}

// Option configures a QuizService.
type Option func(*QuizService)

func WithPassThreshold(pct int) Option      { return func(s *QuizService) { s.passThreshold = pct } }
func WithEngine(e scoring.Engine) Option    { return func(s *QuizService) { s.engine = e } }
func WithClock(now func() time.Time) Option { return func(s *QuizService) { s.now = now } }
func WithIDs(next func() string) Option     { return func(s *QuizService) { s.newID = next } }
func WithLogger(l zerolog.Logger) Option {
	return func(s *QuizService) { s.log = l.With().Str("component", "quiz_service").Logger() }
}

func NewQuizService(quizzes QuizRepository, attempts AttemptRepository, runs RunRepository, opts ...Option) *QuizService {
	s := &QuizService{
		quizzes:       quizzes,
		attempts:      attempts,
		runs:          runs,
		passThreshold: scoring.DefaultPassThreshold,
		now:           time.Now,
		newID:         uuid.NewString,
		log:           zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetQuiz returns the learner view of a quiz.
func (s *QuizService) GetQuiz(ctx context.Context, sess domain.Session, quizID string) (domain.QuizView, error) {
	if err := sess.Require(); err != nil {
		return domain.QuizView{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizView{}, err
	}
	return quiz.View(), nil
}

// GetQuizWithAnswers returns the full quiz including answer keys to instructors.
func (s *QuizService) GetQuizWithAnswers(ctx context.Context, sess domain.Session, quizID string) (domain.Quiz, error) {
	if err := sess.Require(domain.RoleInstructor, domain.RoleAdmin); err != nil {
		return domain.Quiz{}, err
	}
	return s.quizzes.GetQuiz(ctx, quizID)
}

// Submit scores a one-shot submission and records the attempt.
func (s *QuizService) Submit(ctx context.Context, sess domain.Session, quizID string, answers domain.SubmittedAnswers) (domain.Submission, error) {
	if err := sess.Require(); err != nil {
		return domain.Submission{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Submission{}, err
	}
	return s.record(ctx, sess, quiz, answers)
}

func (s *QuizService) record(ctx context.Context, sess domain.Session, quiz domain.Quiz, answers domain.SubmittedAnswers) (domain.Submission, error) {
	result := s.engine.Score(quiz, answers, s.passThreshold)
	attempt := domain.Attempt{
		ID:        s.newID(),
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
		UserID:    sess.UserID,
		Username:  sess.Username,
		TopicName: quiz.TopicName,
		Status:    result.Status(),
		CreatedAt: s.now().UTC(),
		Answers:   answers,
	}
	// pending-review attempts stay ungraded until an instructor marks them
	if attempt.Status == domain.StatusCompleted {
		pct := result.Percentage
		attempt.Score = &pct
	}
	if err := s.attempts.Record(ctx, attempt); err != nil {
		return domain.Submission{}, err
	}
	s.log.Info().
		Str("attempt_id", attempt.ID).
		Str("quiz_id", quiz.ID).
		Str("user_id", sess.UserID).
		Int("score", result.Percentage).
		Bool("passed", result.Passed).
		Msg("attempt recorded")
	return domain.Submission{Attempt: attempt, Result: result}, nil
}

// History returns the caller's attempts labeled per quiz, most recent first.
func (s *QuizService) History(ctx context.Context, sess domain.Session) ([]domain.LabeledAttempt, error) {
	own, err := s.ownAttempts(ctx, sess)
	if err != nil {
		return nil, err
	}
	return attempts.LabelAndSortDescending(own), nil
}

// Stats returns the caller's adaptive summary.
func (s *QuizService) Stats(ctx context.Context, sess domain.Session) (domain.StudentStats, error) {
	own, err := s.ownAttempts(ctx, sess)
	if err != nil {
		return domain.StudentStats{}, err
	}
	return adaptive.BuildStats(own), nil
}

// Lobby lists quizzes the caller has not completed, flagging those at the
// recommended difficulty.
func (s *QuizService) Lobby(ctx context.Context, sess domain.Session) ([]domain.LobbyQuiz, error) {
	own, err := s.ownAttempts(ctx, sess)
	if err != nil {
		return nil, err
	}
	ids, err := s.quizzes.ListQuizIDs(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]domain.AttemptStatus, len(own))
	for _, a := range own {
		latest[a.QuizID] = a.Status
	}
	next := adaptive.RecommendDifficulty(adaptive.OverallAverage(own))

	out := make([]domain.LobbyQuiz, 0, len(ids))
	for _, id := range ids {
		status, ok := latest[id]
		if !ok {
			status = domain.StatusPending
		}
		if status == domain.StatusCompleted {
			continue
		}
		quiz, err := s.quizzes.GetQuiz(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.LobbyQuiz{
			QuizView:    quiz.View(),
			Status:      status,
			Recommended: adaptive.IsRecommended(quiz.Difficulty, next),
		})
	}
	return out, nil
}

// Reports aggregates every learner's attempts for instructors.
func (s *QuizService) Reports(ctx context.Context, sess domain.Session) ([]domain.StudentReport, error) {
	if err := sess.Require(domain.RoleInstructor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	all, err := s.attempts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*domain.StudentReport)
	totals := make(map[string]int)
	for _, a := range all {
		r, ok := byUser[a.UserID]
		if !ok {
			r = &domain.StudentReport{UserID: a.UserID, Username: a.Username}
			byUser[a.UserID] = r
		}
		r.TotalAttempts++
		if a.Graded() {
			totals[a.UserID] += *a.Score
			r.GradedCount++
		}
		if a.Status == domain.StatusPendingReview {
			r.PendingCount++
		}
	}

	out := make([]domain.StudentReport, 0, len(byUser))
	for id, r := range byUser {
		if r.GradedCount > 0 {
			r.AverageScore = scoring.Percentage(totals[id], 100*r.GradedCount)
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// StudentDetails is the instructor drill-down for one learner. History labels
// are grouped by quiz title.
func (s *QuizService) StudentDetails(ctx context.Context, sess domain.Session, studentID string) (domain.StudentDetails, error) {
	if err := sess.Require(domain.RoleInstructor, domain.RoleAdmin); err != nil {
		return domain.StudentDetails{}, err
	}
	list, err := s.attempts.ListByUser(ctx, studentID)
	if err != nil {
		return domain.StudentDetails{}, err
	}
	ordered := attempts.Chronological(list)

	details := domain.StudentDetails{
		UserID:       studentID,
		TotalQuizzes: len(ordered),
		QuizHistory:  attempts.Reverse(attempts.LabelBy(ordered, attempts.ByTitle)),
		Analytics:    adaptive.BuildStats(ordered),
	}
	sum := 0
	for _, a := range ordered {
		if a.Graded() {
			sum += *a.Score
		}
		if a.Status == domain.StatusCompleted {
			details.CompletedCount++
		}
	}
	// ungraded attempts count as zero here
	details.AverageScore = scoring.Percentage(sum, 100*len(ordered))
	return details, nil
}

// AttemptAnswers shows an instructor what was submitted for each question of
// an attempt and how each one currently scores.
func (s *QuizService) AttemptAnswers(ctx context.Context, sess domain.Session, attemptID string) (domain.AttemptReview, error) {
	if err := sess.Require(domain.RoleInstructor, domain.RoleAdmin); err != nil {
		return domain.AttemptReview{}, err
	}
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.AttemptReview{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.AttemptReview{}, err
	}

	items := make([]domain.GradingItem, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		single := domain.Quiz{ID: quiz.ID, Questions: []domain.Question{q}}
		r := s.engine.ScoreWithMarks(single, attempt.Answers, attempt.Marks, s.passThreshold)
		kind := domain.QuestionTypeShortAnswer
		if q.IsMultipleChoice() {
			kind = domain.QuestionTypeMCQ
		}
		items = append(items, domain.GradingItem{
			QuestionID:  q.ID,
			Question:    q.Prompt,
			Type:        kind,
			Answer:      attempt.Answers[q.ID],
			ModelAnswer: q.CorrectAnswer,
			MaxPoints:   q.Weight(),
			Marks:       r.Earned,
			IsGraded:    r.PendingReview == 0,
		})
	}
	return domain.AttemptReview{Attempt: attempt, Items: items}, nil
}

// Grade applies instructor marks to short-answer questions of an attempt and
// rescores it. Once no answer is left waiting for review the attempt becomes
// COMPLETED with its final score. Marks given earlier are kept unless
// overwritten.
func (s *QuizService) Grade(ctx context.Context, sess domain.Session, attemptID string, marks map[string]int) (domain.Submission, error) {
	if err := sess.Require(domain.RoleInstructor, domain.RoleAdmin); err != nil {
		return domain.Submission{}, err
	}
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.Submission{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.Submission{}, err
	}

	questions := make(map[string]domain.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}
	graded := attempt.Clone()
	if graded.Marks == nil {
		graded.Marks = make(map[string]int, len(marks))
	}
	for qid, m := range marks {
		q, ok := questions[qid]
		if !ok {
			return domain.Submission{}, domain.ErrQuestionNotFound
		}
		if q.IsMultipleChoice() || m < 0 || m > q.Weight() {
			return domain.Submission{}, domain.ErrInvalidMarks
		}
		graded.Marks[qid] = m
	}

	result := s.engine.ScoreWithMarks(quiz, graded.Answers, graded.Marks, s.passThreshold)
	graded.Status = result.Status()
	graded.Score = nil
	if graded.Status == domain.StatusCompleted {
		pct := result.Percentage
		graded.Score = &pct
	}
	if err := s.attempts.Update(ctx, graded); err != nil {
		return domain.Submission{}, err
	}
	s.log.Info().
		Str("attempt_id", graded.ID).
		Str("grader_id", sess.UserID).
		Int("marked", len(marks)).
		Str("status", string(graded.Status)).
		Msg("attempt graded")
	return domain.Submission{Attempt: graded, Result: result}, nil
}

// StartRun opens a timed run for the caller.
func (s *QuizService) StartRun(ctx context.Context, sess domain.Session, quizID string) (*Run, domain.QuizView, error) {
	if err := sess.Require(); err != nil {
		return nil, domain.QuizView{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.QuizView{}, err
	}
	run := newRunWithClock(s.newID(), quiz.ID, sess.UserID, quiz.TimeLimit(), s.now)
	s.runs.Put(run)
	s.log.Debug().Str("run_id", run.ID()).Str("quiz_id", quiz.ID).Time("deadline", run.Deadline()).Msg("run started")
	return run, quiz.View(), nil
}

// Answer records one answer in a run.
func (s *QuizService) Answer(ctx context.Context, sess domain.Session, runID, questionID, value string) error {
	run, err := s.ownRun(sess, runID)
	if err != nil {
		return err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, run.QuizID())
	if err != nil {
		return err
	}
	if !hasQuestion(quiz, questionID) {
		return domain.ErrQuestionNotFound
	}
	return run.answer(questionID, value)
}

// FinishRun scores the answers collected so far and records the attempt. It
// is also how a run is closed once its deadline passes.
func (s *QuizService) FinishRun(ctx context.Context, sess domain.Session, runID string) (domain.Submission, error) {
	run, err := s.ownRun(sess, runID)
	if err != nil {
		return domain.Submission{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, run.QuizID())
	if err != nil {
		return domain.Submission{}, err
	}
	answers, err := run.finish()
	if err != nil {
		return domain.Submission{}, err
	}
	sub, err := s.record(ctx, sess, quiz, answers)
	if err != nil {
		// the run stays open so the learner can retry
		run.reopen()
		return domain.Submission{}, err
	}
	s.runs.Delete(runID)
	return sub, nil
}

// AbandonRun drops a run without recording an attempt.
func (s *QuizService) AbandonRun(sess domain.Session, runID string) {
	if _, err := s.ownRun(sess, runID); err != nil {
		return
	}
	s.runs.Delete(runID)
}

func (s *QuizService) ownRun(sess domain.Session, runID string) (*Run, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	run, ok := s.runs.Get(runID)
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	if run.UserID() != sess.UserID {
		return nil, domain.ErrForbidden
	}
	return run, nil
}

func (s *QuizService) ownAttempts(ctx context.Context, sess domain.Session) ([]domain.Attempt, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	list, err := s.attempts.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return attempts.Chronological(list), nil
}

func hasQuestion(quiz domain.Quiz, questionID string) bool {
	for _, q := range quiz.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
