package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lms-quiz-service/internal/app"
)

// RunStore is a Redis-aware implementation of app.RunRepository.
// Notes:
//   - Runs stay in a local map; their answer state lives in process.
//   - Redis carries a liveness marker per run that expires grace after the
//     run's deadline. Get treats a missing marker as an abandoned run and
//     drops it, so deleting the key from any instance closes the run.
//   - When Redis cannot be reached the local map is trusted.
type RunStore struct {
	client *redis.Client
	grace  time.Duration
	mu     sync.RWMutex
	runs   map[string]*app.Run
}

// NewRunStore keeps markers alive for grace past each run's deadline.
func NewRunStore(client *redis.Client, grace time.Duration) *RunStore {
	return &RunStore{
		client: client,
		grace:  grace,
		runs:   make(map[string]*app.Run),
	}
}

func (s *RunStore) Put(run *app.Run) {
	s.mu.Lock()
	s.runs[run.ID()] = run
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(run.ID()), run.UserID()+":"+run.QuizID(), run.Remaining()+s.grace).Err()
}

func (s *RunStore) Get(runID string) (*app.Run, bool) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	n, err := s.client.Exists(context.Background(), s.key(runID)).Result()
	if err != nil || n > 0 {
		return run, true
	}
	s.mu.Lock()
	if s.runs[runID] == run {
		delete(s.runs, runID)
	}
	s.mu.Unlock()
	return nil, false
}

func (s *RunStore) Delete(runID string) {
	s.mu.Lock()
	_, ok := s.runs[runID]
	delete(s.runs, runID)
	s.mu.Unlock()
	if ok {
		_ = s.client.Del(context.Background(), s.key(runID)).Err()
	}
}

func (s *RunStore) key(runID string) string {
	return "quiz:run:" + runID
}
