package auth

import (
	"context"

	"lms-quiz-service/internal/domain"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// SessionFromContext returns the request session, or an unauthenticated zero
// session when none was attached.
func SessionFromContext(ctx context.Context) domain.Session {
	if v, ok := ctx.Value(ctxKeySession).(domain.Session); ok {
		return v
	}
	return domain.Session{}
}
