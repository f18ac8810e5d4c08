package model

import "time"

type NotificationType string

const (
	NotifyUnitCreated   NotificationType = "unit_created"
	NotifyFileUploaded  NotificationType = "file_uploaded"
	NotifyFilePublished NotificationType = "file_published"
)

// Notification records a message sent to a student about new content.
// The table exists but nothing writes to it while notifications are disabled.
type Notification struct {
	ID        string           `json:"id"`
	TeacherID string           `json:"teacher_id"`
	StudentID string           `json:"student_id"`
	UnitID    string           `json:"unit_id"`
	FileID    *string          `json:"file_id"`
	Type      NotificationType `json:"notification_type"`
	SentAt    time.Time        `json:"sent_at"`
	IsRead    bool             `json:"is_read"`
}
