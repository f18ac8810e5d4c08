package model

import "time"

// Role is the fixed role chosen at signup. There is no role-change operation.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Account is a registered student or teacher.
// PasswordHash is never serialized.
type Account struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Subject      *string   `json:"subject"`
	Agreed       bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
