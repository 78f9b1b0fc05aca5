package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"lms-quiz-service/internal/domain"
	"lms-quiz-service/internal/normalize"
)

const (
	attemptUsersKey = "attempts:users"
	attemptDocsKey  = "attempts:docs"
)

// AttemptStore keeps attempt documents in one hash and each user's attempt
// IDs as a list in submission order.
//
//	HSET  attempts:docs {attemptID} {json}
//	RPUSH attempts:user:{userID} {attemptID}
//	SADD  attempts:users {userID}
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) Record(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, attemptDocsKey, attempt.ID, data)
	pipe.RPush(ctx, userKey(attempt.UserID), attempt.ID)
	pipe.SAdd(ctx, attemptUsersKey, attempt.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	raw, err := s.client.HGet(ctx, attemptDocsKey, attemptID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	found := decodeAttempts([]interface{}{raw})
	if len(found) == 0 {
		return domain.Attempt{}, fmt.Errorf("decode attempt %s: not a JSON object", attemptID)
	}
	return found[0], nil
}

// Update rewrites the stored document with the new score, status and marks.
func (s *AttemptStore) Update(ctx context.Context, attempt domain.Attempt) error {
	cur, err := s.Get(ctx, attempt.ID)
	if err != nil {
		return err
	}
	cur.Score, cur.Status, cur.Marks = attempt.Score, attempt.Status, attempt.Marks
	data, err := json.Marshal(cur)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if err := s.client.HSet(ctx, attemptDocsKey, cur.ID, data).Err(); err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	ids, err := s.client.LRange(ctx, userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *AttemptStore) ListAll(ctx context.Context) ([]domain.Attempt, error) {
	users, err := s.client.SMembers(ctx, attemptUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempt users: %w", err)
	}
	sort.Strings(users)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, 0, len(users))
	for _, u := range users {
		cmds = append(cmds, pipe.LRange(ctx, userKey(u), 0, -1))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	var ids []string
	for _, cmd := range cmds {
		ids = append(ids, cmd.Val()...)
	}
	return s.load(ctx, ids)
}

func (s *AttemptStore) load(ctx context.Context, ids []string) ([]domain.Attempt, error) {
	if len(ids) == 0 {
		return []domain.Attempt{}, nil
	}
	raw, err := s.client.HMGet(ctx, attemptDocsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	return decodeAttempts(raw), nil
}

// decodeAttempts skips missing fields and entries that are not JSON objects.
func decodeAttempts(raw []interface{}) []domain.Attempt {
	out := make([]domain.Attempt, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		var rec normalize.Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			continue
		}
		out = append(out, normalize.Attempt(rec))
	}
	return out
}

func userKey(userID string) string {
	return "attempts:user:" + userID
}
