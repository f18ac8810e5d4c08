package repository

import (
	"context"

	"courseportal/internal/model"
)

// UnitRepository defines data access for course units.
type UnitRepository interface {
	// Create inserts a new unit. Returns ErrDuplicate if the teacher already has a unit with that name.
	Create(ctx context.Context, unit *model.Unit) (*model.Unit, error)

	// FindByID returns a unit by its ID.
	FindByID(ctx context.Context, id string) (*model.Unit, error)

	// ListByTeacher returns the teacher's units ordered by creation time.
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Unit, error)

	// ListWithPublishedFiles returns every unit holding at least one published file.
	ListWithPublishedFiles(ctx context.Context) ([]model.Unit, error)

	// Delete removes a unit; file rows go with it through the foreign key cascade.
	Delete(ctx context.Context, id string) error
}
