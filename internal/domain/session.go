package domain

import "strings"

// Role is an authorization role carried by a Session.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// NormalizeRole upper-cases and trims a raw role string.
func NormalizeRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

// Session is the caller identity handed explicitly into authorization checks.
type Session struct {
	Token    string
	UserID   string
	Username string
	Role     Role
}

// Authenticated reports whether the session carries a token and a user.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.UserID != ""
}

// HasRole reports whether the session role is one of roles. An empty list only
// requires authentication.
func (s Session) HasRole(roles ...Role) bool {
	if !s.Authenticated() {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	own := NormalizeRole(string(s.Role))
	for _, r := range roles {
		if NormalizeRole(string(r)) == own {
			return true
		}
	}
	return false
}

// CanInstruct reports whether the session may use instructor views.
func (s Session) CanInstruct() bool {
	return s.HasRole(RoleInstructor, RoleAdmin)
}

// Require returns ErrUnauthorized or ErrForbidden when the session fails HasRole.
func (s Session) Require(roles ...Role) error {
	if !s.Authenticated() {
		return ErrUnauthorized
	}
	if !s.HasRole(roles...) {
		return ErrForbidden
	}
	return nil
}
