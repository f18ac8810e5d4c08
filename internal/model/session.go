package model

import "time"

// Session is server-held proof of a successful login, scoped to one account and role.
// Token is opaque to clients.
type Session struct {
	Token     string    `json:"-"`
	AccountID string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Subject   *string   `json:"subject"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// IsTeacher reports whether s is a non-nil teacher session.
func (s *Session) IsTeacher() bool {
	return s != nil && s.Role == RoleTeacher
}
