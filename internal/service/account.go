package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courseportal/internal/model"
	"courseportal/internal/repository"
)

// RegisterInput is the signup form after transport decoding.
// ConfirmPassword is only checked when non-empty.
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            model.Role
	Subject         string
	Agreed          bool
}

// UnitWithFiles is a unit together with the files visible to the caller.
type UnitWithFiles struct {
	model.Unit
	Files []model.File `json:"files"`
}

// TeacherCatalog is one teacher with their published content.
type TeacherCatalog struct {
	model.Account
	Units []UnitWithFiles `json:"units"`
}

// AccountService manages accounts and the public teacher catalog.
type AccountService interface {
	// Register creates an account. The email is unique across every role.
	Register(ctx context.Context, in RegisterInput) (*model.Account, error)

	// Teachers lists teachers with at least one published file, each with only
	// their units that hold published files and only those files.
	Teachers(ctx context.Context) ([]TeacherCatalog, error)
}

type accountService struct {
	accounts repository.AccountRepository
	units    repository.UnitRepository
	files    repository.FileRepository
	hasher   PasswordHasher
	deps
}

func NewAccountService(accounts repository.AccountRepository, units repository.UnitRepository, files repository.FileRepository, hasher PasswordHasher, opts ...Option) AccountService {
	return &accountService{
		accounts: accounts,
		units:    units,
		files:    files,
		hasher:   hasher,
		deps:     newDeps(opts),
	}
}

func (s *accountService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := NormalizeEmail(in.Email)
	if fullName == "" || email == "" || in.Password == "" || !in.Role.Valid() {
		return nil, ErrInvalidInput
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, ErrPasswordMismatch
	}
	if !in.Agreed {
		return nil, ErrTermsNotAccepted
	}

	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &model.Account{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Agreed:       true,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if subject := strings.TrimSpace(in.Subject); subject != "" {
		acc.Subject = &subject
	}

	created, err := s.accounts.Create(ctx, acc)
	if err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account_registered", map[string]any{"account_id": created.ID, "role": string(created.Role)})
	return created, nil
}

func (s *accountService) Teachers(ctx context.Context) ([]TeacherCatalog, error) {
	teachers, err := s.accounts.ListByRole(ctx, model.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	units, err := s.units.ListWithPublishedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	files, err := s.files.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published files: %w", err)
	}

	filesByUnit := make(map[string][]model.File)
	for _, f := range files {
		// Re-check the flag so a row that changed between queries never leaks a draft.
		if !f.IsPublished {
			continue
		}
		filesByUnit[f.UnitID] = append(filesByUnit[f.UnitID], f)
	}

	unitsByTeacher := make(map[string][]UnitWithFiles)
	for _, u := range units {
		fs := filesByUnit[u.ID]
		if len(fs) == 0 {
			continue
		}
		unitsByTeacher[u.TeacherID] = append(unitsByTeacher[u.TeacherID], UnitWithFiles{Unit: u, Files: fs})
	}

	out := make([]TeacherCatalog, 0, len(unitsByTeacher))
	for _, t := range teachers {
		us := unitsByTeacher[t.ID]
		if len(us) == 0 {
			continue
		}
		out = append(out, TeacherCatalog{Account: t, Units: us})
	}
	return out, nil
}
