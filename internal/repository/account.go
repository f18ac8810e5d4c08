package repository

import (
	"context"

	"courseportal/internal/model"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create inserts a new account. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, acc *model.Account) (*model.Account, error)

	// FindByID returns an account by its ID.
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByEmailAndRole returns the single account matching email and role.
	FindByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.Account, error)

	// EmailExists reports whether any account, of any role, uses email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// ListByRole returns accounts with the given role ordered by full name.
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
}
