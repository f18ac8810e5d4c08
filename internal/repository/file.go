package repository

import (
	"context"

	"courseportal/internal/model"
)

// FileRepository defines data access for uploaded file metadata.
type FileRepository interface {
	// Create inserts a new file record.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListByUnit returns all files in a unit, newest first.
	ListByUnit(ctx context.Context, unitID string) ([]model.File, error)

	// ListByTeacher returns all files owned by a teacher, newest first.
	ListByTeacher(ctx context.Context, teacherID string) ([]model.File, error)

	// ListPublished returns every published file, newest first.
	ListPublished(ctx context.Context) ([]model.File, error)

	// PublishUnit marks every draft in the unit as published and returns how many changed.
	PublishUnit(ctx context.Context, unitID string) (int64, error)

	// SetPublished sets one file's flag and returns the updated row.
	SetPublished(ctx context.Context, id string, published bool) (*model.File, error)

	// Delete removes a file record. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
