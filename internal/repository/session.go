package repository

import (
	"context"
	"time"

	"courseportal/internal/model"
)

// SessionRepository is the server-side session store keyed by opaque token.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// Delete removes a session. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes sessions that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
