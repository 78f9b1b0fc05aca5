package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lms-quiz-service/internal/domain"
)

// AttemptStore persists attempts in the quiz_attempts table. Answers and
// instructor marks are JSONB objects keyed by question ID.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

const attemptColumns = `id, quiz_id, quiz_title, user_id, username, score, topic_name, status, created_at, answers, marks`

func (s *AttemptStore) Record(ctx context.Context, a domain.Attempt) error {
	var created sql.NullTime
	if !a.CreatedAt.IsZero() {
		created = sql.NullTime{Time: a.CreatedAt, Valid: true}
	}
	answers, err := jsonObject(a.Answers)
	if err != nil {
		return err
	}
	marks, err := jsonObject(a.Marks)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (`+attemptColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb)`,
		a.ID, a.QuizID, a.QuizTitle, a.UserID, a.Username, nullScore(a.Score), a.TopicName, string(a.Status), created, answers, marks,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id=$1`, attemptID)
	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, err
	}
	return a, nil
}

func (s *AttemptStore) Update(ctx context.Context, a domain.Attempt) error {
	marks, err := jsonObject(a.Marks)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_attempts SET score=$2, status=$3, marks=$4::jsonb WHERE id=$1`,
		a.ID, nullScore(a.Score), string(a.Status), marks,
	)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE user_id=$1 ORDER BY created_at NULLS FIRST, seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return scanAttempts(rows)
}

func (s *AttemptStore) ListAll(ctx context.Context) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts ORDER BY user_id, created_at NULLS FIRST, seq`)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return scanAttempts(rows)
}

func scanAttempts(rows pgx.Rows) ([]domain.Attempt, error) {
	defer rows.Close()
	var out []domain.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var (
		a              domain.Attempt
		status         string
		score          sql.NullInt32
		created        sql.NullTime
		answers, marks []byte
	)
	err := row.Scan(&a.ID, &a.QuizID, &a.QuizTitle, &a.UserID, &a.Username, &score, &a.TopicName, &status, &created, &answers, &marks)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, err
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.Status = domain.AttemptStatus(status)
	if score.Valid {
		v := int(score.Int32)
		a.Score = &v
	}
	if created.Valid {
		a.CreatedAt = created.Time.In(time.UTC)
	}
	if err := decodeObject(answers, &a.Answers); err != nil {
		return domain.Attempt{}, fmt.Errorf("decode answers of %s: %w", a.ID, err)
	}
	if err := decodeObject(marks, &a.Marks); err != nil {
		return domain.Attempt{}, fmt.Errorf("decode marks of %s: %w", a.ID, err)
	}
	return a, nil
}

func nullScore(score *int) sql.NullInt32 {
	if score == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*score), Valid: true}
}

func jsonObject[M ~map[string]V, V any](m M) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode attempt json: %w", err)
	}
	return string(data), nil
}

// decodeObject leaves dst nil for an empty object.
func decodeObject[M ~map[string]V, V any](data []byte, dst *M) error {
	if len(data) == 0 {
		return nil
	}
	var m M
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) > 0 {
		*dst = m
	}
	return nil
}
