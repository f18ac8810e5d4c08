package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Tag is a closed-set classification label. It has no behavioral effect.
type Tag string

const (
	TagAssignment    Tag = "assignment"
	TagPersonalNote  Tag = "personal_note"
	TagStudyMaterial Tag = "study_material"
	TagQuestionBank  Tag = "question_bank"

	DefaultTag = TagStudyMaterial
)

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagAssignment, TagPersonalNote, TagStudyMaterial, TagQuestionBank:
		return true
	}
	return false
}

// File is an uploaded file inside a Unit.
// TeacherID always equals the parent unit's TeacherID; the schema enforces it.
// A File starts as a Draft (IsPublished=false) and is invisible to students until published.
type File struct {
	ID           string    `json:"id"`
	TeacherID    string    `json:"teacher_id"`
	UnitID       string    `json:"unit_id"`
	OriginalName string    `json:"original_name"`
	StoragePath  string    `json:"-"`
	FileSize     int64     `json:"file_size"`
	FileType     string    `json:"file_type"`
	Tag          Tag       `json:"tag"`
	IsPublished  bool      `json:"is_published"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Previewable reports whether the file can be rendered inline by a browser.
func (f File) Previewable() bool {
	return strings.Contains(strings.ToLower(f.FileType), "pdf")
}

// SizeDisplay formats FileSize as a human readable string, e.g. "1.5 MB".
func (f File) SizeDisplay() string {
	return HumanSize(f.FileSize)
}

// MarshalJSON adds the derived presentation fields.
func (f File) MarshalJSON() ([]byte, error) {
	type plain File
	return json.Marshal(struct {
		plain
		SizeDisplay string `json:"size_display"`
		Previewable bool   `json:"previewable"`
	}{
		plain:       plain(f),
		SizeDisplay: f.SizeDisplay(),
		Previewable: f.Previewable(),
	})
}

// HumanSize converts bytes to B/KB/MB/GB/TB with one decimal.
func HumanSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
