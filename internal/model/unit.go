package model

import "time"

// Unit is a named, folder-like grouping of files owned by one teacher.
// (TeacherID, Name) is unique.
type Unit struct {
	ID          string    `json:"id"`
	TeacherID   string    `json:"teacher_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
