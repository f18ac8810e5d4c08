package postgres

import (
	"context"
	"database/sql"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, teacher_id, unit_id, original_name, storage_path, file_size, file_type, tag, is_published, uploaded_at`

func scanFile(s rowScanner) (*model.File, error) {
	var f model.File
	if err := s.Scan(
		&f.ID,
		&f.TeacherID,
		&f.UnitID,
		&f.OriginalName,
		&f.StoragePath,
		&f.FileSize,
		&f.FileType,
		&f.Tag,
		&f.IsPublished,
		&f.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FilePostgres) list(ctx context.Context, q string, args ...any) ([]model.File, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new file row and returns the stored record.
// The (unit_id, teacher_id) foreign key rejects a teacher that does not own the unit.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, teacher_id, unit_id, original_name, storage_path, file_size, file_type, tag, is_published, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.TeacherID,
		f.UnitID,
		f.OriginalName,
		f.StoragePath,
		f.FileSize,
		f.FileType,
		string(f.Tag),
		f.IsPublished,
		f.UploadedAt,
	)
	out, err := scanFile(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByUnit returns the unit's files, newest first.
func (r *FilePostgres) ListByUnit(ctx context.Context, unitID string) ([]model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE unit_id = $1 ORDER BY uploaded_at DESC, id DESC`
	return r.list(ctx, q, unitID)
}

// ListByTeacher returns the teacher's files, newest first.
func (r *FilePostgres) ListByTeacher(ctx context.Context, teacherID string) ([]model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE teacher_id = $1 ORDER BY uploaded_at DESC, id DESC`
	return r.list(ctx, q, teacherID)
}

// ListPublished returns all published files, newest first.
func (r *FilePostgres) ListPublished(ctx context.Context) ([]model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE is_published ORDER BY uploaded_at DESC, id DESC`
	return r.list(ctx, q)
}

// PublishUnit flips every draft in the unit to published.
// Rows already published are not touched, so a repeated call returns 0.
func (r *FilePostgres) PublishUnit(ctx context.Context, unitID string) (int64, error) {
	const q = `UPDATE files SET is_published = TRUE WHERE unit_id = $1 AND is_published = FALSE`
	res, err := r.db.ExecContext(ctx, q, unitID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetPublished sets one file's flag. Returns sql.ErrNoRows if the file is gone.
func (r *FilePostgres) SetPublished(ctx context.Context, id string, published bool) (*model.File, error) {
	const q = `UPDATE files SET is_published = $2 WHERE id = $1 RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q, id, published))
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
