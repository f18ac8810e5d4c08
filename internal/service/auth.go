package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

// AuthService establishes, resolves and ends login sessions.
type AuthService interface {
	// Authenticate checks email+password+role and starts a new session.
	// previousToken, if any, is invalidated first; nothing is created on failure.
	Authenticate(ctx context.Context, previousToken, email, password string, role model.Role) (*model.Session, error)

	// Logout ends the session behind token. Unknown or empty tokens are not an error.
	Logout(ctx context.Context, token string) error

	// Current returns the live session for token, or nil when there is none.
	Current(ctx context.Context, token string) (*model.Session, error)

	// PurgeExpired drops every expired session and reports how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}

type authService struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	hasher   PasswordHasher
	ttl      time.Duration
	deps
}

// NewAuthService constructs an AuthService. A non-positive ttl means 24h.
func NewAuthService(accounts repository.AccountRepository, sessions repository.SessionRepository, hasher PasswordHasher, ttl time.Duration, opts ...Option) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		deps:     newDeps(opts),
	}
}

// NormalizeEmail trims and lower-cases an address. Uniqueness and lookup both use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Authenticate(ctx context.Context, previousToken, email, password string, role model.Role) (*model.Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" || !role.Valid() {
		return nil, ErrInvalidInput
	}

	acc, err := s.accounts.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.Login("account_not_found")
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !s.hasher.Compare(acc.PasswordHash, password) {
		s.metrics.Login("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if previousToken != "" {
		if err := s.sessions.Delete(ctx, previousToken); err != nil {
			return nil, fmt.Errorf("drop previous session: %w", err)
		}
	}

	now := s.now().UTC()
	sess := &model.Session{
		Token:     uuid.NewString(),
		AccountID: acc.ID,
		FullName:  acc.FullName,
		Email:     acc.Email,
		Role:      acc.Role,
		Subject:   acc.Subject,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.Login("success")
	s.log.Info("login_succeeded", map[string]any{"account_id": acc.ID, "role": string(acc.Role)})
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *authService) Current(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("drop expired session: %w", err)
		}
		return nil, nil
	}
	return sess, nil
}

func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}
