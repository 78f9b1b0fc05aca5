package memory

import (
	"context"
	"sync"

	"lms-quiz-service/internal/domain"
)

// AttemptStore keeps attempts in insertion order, per user.
type AttemptStore struct {
	mu     sync.RWMutex
	docs   map[string]domain.Attempt
	byUser map[string][]string
	order  []string
}

func NewAttemptStore(seed ...domain.Attempt) *AttemptStore {
	s := &AttemptStore{
		docs:   make(map[string]domain.Attempt),
		byUser: make(map[string][]string),
	}
	for _, a := range seed {
		s.add(a)
	}
	return s
}

func (s *AttemptStore) Record(_ context.Context, attempt domain.Attempt) error {
	s.add(attempt)
	return nil
}

func (s *AttemptStore) add(attempt domain.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[attempt.ID]; !ok {
		s.byUser[attempt.UserID] = append(s.byUser[attempt.UserID], attempt.ID)
		s.order = append(s.order, attempt.ID)
	}
	s.docs[attempt.ID] = attempt.Clone()
}

func (s *AttemptStore) Get(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.docs[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return a.Clone(), nil
}

func (s *AttemptStore) Update(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[attempt.ID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	next := attempt.Clone()
	cur.Score, cur.Status, cur.Marks = next.Score, next.Status, next.Marks
	s.docs[attempt.ID] = cur
	return nil
}

func (s *AttemptStore) ListByUser(_ context.Context, userID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byUser[userID]), nil
}

func (s *AttemptStore) ListAll(_ context.Context) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.order), nil
}

func (s *AttemptStore) collect(ids []string) []domain.Attempt {
	out := make([]domain.Attempt, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.docs[id].Clone())
	}
	return out
}
