package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUnauthorized is returned when no authenticated session is present.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the session role may not perform an action.
	ErrForbidden = errors.New("access denied")
	// ErrRunNotFound is returned when a timed run has not been started.
	ErrRunNotFound = errors.New("quiz run not found")
	// ErrRunFinished is returned when answering a run that was already submitted.
	ErrRunFinished = errors.New("quiz run already submitted")
	// ErrRunExpired is returned when answering after the time limit.
	ErrRunExpired = errors.New("quiz run time limit exceeded")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptNotFound is returned when no attempt has the given ID.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrInvalidMarks is returned for marks outside [0, points] or on auto-graded questions.
	ErrInvalidMarks = errors.New("invalid marks")
)
