package postgres

import (
	"context"
	"database/sql"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

// AccountPostgres is a PostgreSQL implementation of repository.AccountRepository.
type AccountPostgres struct {
	db *sql.DB
}

// NewAccountPostgres creates a new AccountPostgres repository.
func NewAccountPostgres(db *sql.DB) *AccountPostgres {
	return &AccountPostgres{db: db}
}

var _ repository.AccountRepository = (*AccountPostgres)(nil)

const accountColumns = `id, full_name, email, password_hash, role, subject, agreed, created_at`

func scanAccount(s rowScanner) (*model.Account, error) {
	var a model.Account
	if err := s.Scan(
		&a.ID,
		&a.FullName,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&a.Subject,
		&a.Agreed,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account row and returns the stored record.
func (r *AccountPostgres) Create(ctx context.Context, acc *model.Account) (*model.Account, error) {
	const q = `
		INSERT INTO accounts (id, full_name, email, password_hash, role, subject, agreed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + accountColumns
	row := r.db.QueryRowContext(ctx, q,
		acc.ID,
		acc.FullName,
		acc.Email,
		acc.PasswordHash,
		string(acc.Role),
		acc.Subject,
		acc.Agreed,
		acc.CreatedAt,
	)
	out, err := scanAccount(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// FindByID fetches a single account by its ID.
func (r *AccountPostgres) FindByID(ctx context.Context, id string) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmailAndRole fetches the account registered with email under role.
func (r *AccountPostgres) FindByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 AND role = $2`
	return scanAccount(r.db.QueryRowContext(ctx, q, email, string(role)))
}

// EmailExists checks the email across all roles.
func (r *AccountPostgres) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByRole returns all accounts with role, ordered by full name.
func (r *AccountPostgres) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 ORDER BY full_name, id`
	rows, err := r.db.QueryContext(ctx, q, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
