package postgres

import (
	"context"
	"database/sql"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

// UnitPostgres is a PostgreSQL implementation of repository.UnitRepository.
type UnitPostgres struct {
	db *sql.DB
}

// NewUnitPostgres creates a new UnitPostgres repository.
func NewUnitPostgres(db *sql.DB) *UnitPostgres {
	return &UnitPostgres{db: db}
}

var _ repository.UnitRepository = (*UnitPostgres)(nil)

const unitColumns = `id, teacher_id, name, description, created_at, updated_at`

func scanUnit(s rowScanner) (*model.Unit, error) {
	var u model.Unit
	if err := s.Scan(
		&u.ID,
		&u.TeacherID,
		&u.Name,
		&u.Description,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UnitPostgres) list(ctx context.Context, q string, args ...any) ([]model.Unit, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Unit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new unit row and returns the stored record.
func (r *UnitPostgres) Create(ctx context.Context, unit *model.Unit) (*model.Unit, error) {
	const q = `
		INSERT INTO units (id, teacher_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + unitColumns
	row := r.db.QueryRowContext(ctx, q,
		unit.ID,
		unit.TeacherID,
		unit.Name,
		unit.Description,
		unit.CreatedAt,
		unit.UpdatedAt,
	)
	out, err := scanUnit(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// FindByID fetches a single unit by its ID.
func (r *UnitPostgres) FindByID(ctx context.Context, id string) (*model.Unit, error) {
	const q = `SELECT ` + unitColumns + ` FROM units WHERE id = $1`
	return scanUnit(r.db.QueryRowContext(ctx, q, id))
}

// ListByTeacher returns the teacher's units, oldest first.
func (r *UnitPostgres) ListByTeacher(ctx context.Context, teacherID string) ([]model.Unit, error) {
	const q = `SELECT ` + unitColumns + ` FROM units WHERE teacher_id = $1 ORDER BY created_at, id`
	return r.list(ctx, q, teacherID)
}

// ListWithPublishedFiles returns units that contain at least one published file.
func (r *UnitPostgres) ListWithPublishedFiles(ctx context.Context) ([]model.Unit, error) {
	const q = `
		SELECT ` + unitColumns + `
		FROM units u
		WHERE EXISTS (SELECT 1 FROM files f WHERE f.unit_id = u.id AND f.is_published)
		ORDER BY created_at, id
	`
	return r.list(ctx, q)
}

// Delete removes a unit by ID. Child file rows are removed by ON DELETE CASCADE.
func (r *UnitPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM units WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
