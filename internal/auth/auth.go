// Package auth turns bearer tokens into domain sessions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lms-quiz-service/internal/domain"
)

// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

const issuer = "lms-quiz-service"

type Claims struct {
	Sub  string `json:"sub"`
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies HS256 tokens.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the given identity. Used by the dev tooling and tests;
// production tokens come from the LMS backend sharing the secret.
func (a *Authenticator) Issue(userID, username string, role domain.Role, ttl time.Duration) (string, error) {
	now := a.now()
	claims := &Claims{
		Sub:  userID,
		Name: username,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies the token and returns the session it describes.
func (a *Authenticator) Parse(token string) (domain.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID := claims.Sub
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return domain.Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	username := claims.Name
	if username == "" {
		username = userID
	}
	return domain.Session{
		Token:    token,
		UserID:   userID,
		Username: username,
		Role:     domain.NormalizeRole(claims.Role),
	}, nil
}
