package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

var (
	accountCols = []string{"id", "full_name", "email", "password_hash", "role", "subject", "agreed", "created_at"}
	unitCols    = []string{"id", "teacher_id", "name", "description", "created_at", "updated_at"}
	fileCols    = []string{"id", "teacher_id", "unit_id", "original_name", "storage_path", "file_size", "file_type", "tag", "is_published", "uploaded_at"}
	sessionCols = []string{"token", "account_id", "full_name", "email", "role", "subject", "created_at", "expires_at"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestMapWriteError(t *testing.T) {
	err := mapWriteError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "accounts_email_key")

	other := errors.New("connection reset")
	assert.Equal(t, other, mapWriteError(other))

	assert.True(t, IsNoRowsError(sql.ErrNoRows))
	assert.False(t, IsNoRowsError(other))
}

func TestAccountPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	subject := "Physics"

	acc := &model.Account{
		ID:           "acc-1",
		FullName:     "Ada Teacher",
		Email:        "ada@x.com",
		PasswordHash: "$2a$10$hash",
		Role:         model.RoleTeacher,
		Subject:      &subject,
		Agreed:       true,
		CreatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WithArgs(acc.ID, acc.FullName, acc.Email, acc.PasswordHash, "teacher", "Physics", true, now).
			WillReturnRows(sqlmock.NewRows(accountCols).
				AddRow(acc.ID, acc.FullName, acc.Email, acc.PasswordHash, "teacher", "Physics", true, now))

		got, err := repo.Create(ctx, acc)
		require.NoError(t, err)
		assert.Equal(t, model.RoleTeacher, got.Role)
		require.NotNil(t, got.Subject)
		assert.Equal(t, "Physics", *got.Subject)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO accounts").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

		got, err := repo.Create(ctx, acc)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountPostgres_Lookups(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountPostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("find by email and role", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE email = (.+) AND role = ").
			WithArgs("s@x.com", "student").
			WillReturnRows(sqlmock.NewRows(accountCols).
				AddRow("acc-2", "Sam", "s@x.com", "$2a$10$h", "student", nil, true, now))

		got, err := repo.FindByEmailAndRole(ctx, "s@x.com", model.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, "acc-2", got.ID)
		assert.Nil(t, got.Subject)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = ").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, got)
	})

	t.Run("email exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("s@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.EmailExists(ctx, "s@x.com")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list by role", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE role = (.+) ORDER BY full_name").
			WithArgs("teacher").
			WillReturnRows(sqlmock.NewRows(accountCols).
				AddRow("t1", "Ada", "a@x.com", "h", "teacher", nil, true, now).
				AddRow("t2", "Bob", "b@x.com", "h", "teacher", "Maths", true, now))

		got, err := repo.ListByRole(ctx, model.RoleTeacher)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "Maths", *got[1].Subject)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUnitPostgres(db)
	ctx := context.Background()
	now := time.Now()
	unit := &model.Unit{ID: "u1", TeacherID: "t1", Name: "Algebra", CreatedAt: now, UpdatedAt: now}

	t.Run("create", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO units").
			WithArgs("u1", "t1", "Algebra", nil, now, now).
			WillReturnRows(sqlmock.NewRows(unitCols).AddRow("u1", "t1", "Algebra", nil, now, now))

		got, err := repo.Create(ctx, unit)
		require.NoError(t, err)
		assert.Equal(t, "Algebra", got.Name)
		assert.Nil(t, got.Description)
	})

	t.Run("create duplicate name", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO units").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "units_teacher_id_name_key"})

		_, err := repo.Create(ctx, unit)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("list by teacher", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM units WHERE teacher_id = ").
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows(unitCols).
				AddRow("u1", "t1", "Algebra", nil, now, now).
				AddRow("u2", "t1", "Geometry", "Shapes", now, now))

		got, err := repo.ListByTeacher(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "Shapes", *got[1].Description)
	})

	t.Run("list with published files", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM units u WHERE EXISTS").
			WillReturnRows(sqlmock.NewRows(unitCols).AddRow("u1", "t1", "Algebra", nil, now, now))

		got, err := repo.ListWithPublishedFiles(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("find missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM units WHERE id = ").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(ctx, "nope")
		assert.True(t, IsNoRowsError(err))
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM units WHERE id = ").
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "u1"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()
	now := time.Now()

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(fileCols).
			AddRow("f1", "t1", "u1", "notes.pdf", "course_files/f1.pdf", int64(1024), "application/pdf", "study_material", false, now)
	}

	t.Run("create", func(t *testing.T) {
		f := &model.File{
			ID: "f1", TeacherID: "t1", UnitID: "u1", OriginalName: "notes.pdf",
			StoragePath: "course_files/f1.pdf", FileSize: 1024, FileType: "application/pdf",
			Tag: model.TagStudyMaterial, UploadedAt: now,
		}
		mock.ExpectQuery("INSERT INTO files").
			WithArgs("f1", "t1", "u1", "notes.pdf", "course_files/f1.pdf", int64(1024), "application/pdf", "study_material", false, now).
			WillReturnRows(row())

		got, err := repo.Create(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, model.TagStudyMaterial, got.Tag)
		assert.False(t, got.IsPublished)
	})

	t.Run("list by unit", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE unit_id = ").
			WithArgs("u1").
			WillReturnRows(row())

		got, err := repo.ListByUnit(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("list by teacher", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE teacher_id = ").
			WithArgs("t1").
			WillReturnRows(row())

		got, err := repo.ListByTeacher(ctx, "t1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("list published", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE is_published").
			WillReturnRows(sqlmock.NewRows(fileCols))

		got, err := repo.ListPublished(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("publish unit reports transitioned rows", func(t *testing.T) {
		mock.ExpectExec("UPDATE files SET is_published = TRUE WHERE unit_id = (.+) AND is_published = FALSE").
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.PublishUnit(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("set published", func(t *testing.T) {
		mock.ExpectQuery("UPDATE files SET is_published = (.+) WHERE id = (.+) RETURNING").
			WithArgs("f1", true).
			WillReturnRows(sqlmock.NewRows(fileCols).
				AddRow("f1", "t1", "u1", "notes.pdf", "course_files/f1.pdf", int64(1024), "application/pdf", "study_material", true, now))

		got, err := repo.SetPublished(ctx, "f1", true)
		require.NoError(t, err)
		assert.True(t, got.IsPublished)
	})

	t.Run("set published on deleted row", func(t *testing.T) {
		mock.ExpectQuery("UPDATE files SET is_published").
			WithArgs("gone", false).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.SetPublished(ctx, "gone", false)
		assert.True(t, IsNoRowsError(err))
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE id = ").
			WithArgs("f1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "f1"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionPostgres(db)
	ctx := context.Background()
	now := time.Now()

	s := &model.Session{
		Token: "tok", AccountID: "t1", FullName: "Ada", Email: "a@x.com",
		Role: model.RoleTeacher, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("tok", "t1", "Ada", "a@x.com", "teacher", nil, s.CreatedAt, s.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, s))

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE token = ").
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow("tok", "t1", "Ada", "a@x.com", "teacher", nil, s.CreatedAt, s.ExpiresAt))
	got, err := repo.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, got.Role)

	mock.ExpectExec("DELETE FROM sessions WHERE token = ").
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Delete(ctx, "tok"))

	mock.ExpectExec("DELETE FROM sessions WHERE expires_at <= ").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))
	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
