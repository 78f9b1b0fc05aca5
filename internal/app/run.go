package app

import (
	"sync"
	"time"

	"lms-quiz-service/internal/domain"
)

// Run is a timed quiz attempt in progress. Answers are collected until the
// learner submits or the deadline passes.
type Run struct {
	id        string
	quizID    string
	userID    string
	startedAt time.Time
	deadline  time.Time
	now       func() time.Time

	mu       sync.Mutex
	answers  domain.SubmittedAnswers
	finished bool
}

// NewRun is exported for infrastructure layers that need to seed runs.
func NewRun(id, quizID, userID string, limit time.Duration) *Run {
	return newRunWithClock(id, quizID, userID, limit, time.Now)
}

func newRunWithClock(id, quizID, userID string, limit time.Duration, now func() time.Time) *Run {
	started := now()
	return &Run{
		id:        id,
		quizID:    quizID,
		userID:    userID,
		startedAt: started,
		deadline:  started.Add(limit),
		now:       now,
		answers:   make(domain.SubmittedAnswers),
	}
}

func (r *Run) ID() string           { return r.id }
func (r *Run) QuizID() string       { return r.quizID }
func (r *Run) UserID() string       { return r.userID }
func (r *Run) StartedAt() time.Time { return r.startedAt }
func (r *Run) Deadline() time.Time  { return r.deadline }

// Remaining returns the time left before the deadline, never negative.
func (r *Run) Remaining() time.Duration {
	left := r.deadline.Sub(r.now())
	if left < 0 {
		return 0
	}
	return left
}

// Finished reports whether the run has been submitted.
func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func (r *Run) answer(questionID, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return domain.ErrRunFinished
	}
	if r.now().After(r.deadline) {
		return domain.ErrRunExpired
	}
	r.answers[questionID] = value
	return nil
}

// finish closes the run and returns a copy of the collected answers.
func (r *Run) finish() (domain.SubmittedAnswers, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return nil, domain.ErrRunFinished
	}
	r.finished = true
	out := make(domain.SubmittedAnswers, len(r.answers))
	for k, v := range r.answers {
		out[k] = v
	}
	return out, nil
}

// reopen undoes finish when the attempt could not be recorded.
func (r *Run) reopen() {
	r.mu.Lock()
	r.finished = false
	r.mu.Unlock()
}
