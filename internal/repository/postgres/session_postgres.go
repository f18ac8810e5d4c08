package postgres

import (
	"context"
	"database/sql"
	"time"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

// SessionPostgres keeps login sessions in the sessions table.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) error {
	const q = `
		INSERT INTO sessions (token, account_id, full_name, email, role, subject, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, q,
		s.Token,
		s.AccountID,
		s.FullName,
		s.Email,
		string(s.Role),
		s.Subject,
		s.CreatedAt,
		s.ExpiresAt,
	)
	return err
}

func (r *SessionPostgres) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	const q = `
		SELECT token, account_id, full_name, email, role, subject, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`
	var s model.Session
	if err := r.db.QueryRowContext(ctx, q, token).Scan(
		&s.Token,
		&s.AccountID,
		&s.FullName,
		&s.Email,
		&s.Role,
		&s.Subject,
		&s.CreatedAt,
		&s.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionPostgres) Delete(ctx context.Context, token string) error {
	const q = `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, q, token)
	return err
}

func (r *SessionPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at <= $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
