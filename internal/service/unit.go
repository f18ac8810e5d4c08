package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"courseportal/internal/model"
	"courseportal/internal/repository"
	"courseportal/internal/storage"
)

// MaxUnitNameLength is the longest unit name accepted, in characters.
const MaxUnitNameLength = 200

// CreateUnitInput is the create-unit form after transport decoding.
type CreateUnitInput struct {
	Name        string
	Description string
}

// UnitService manages a teacher's units.
type UnitService interface {
	// Create adds an empty unit owned by the session's teacher.
	Create(ctx context.Context, sess *model.Session, in CreateUnitInput) (*model.Unit, error)

	// Delete removes the unit together with every file in it, bytes included.
	// A missing unit is reported exactly like somebody else's unit.
	Delete(ctx context.Context, sess *model.Session, unitID string) error

	// ListMine returns the session teacher's units, drafts included.
	ListMine(ctx context.Context, sess *model.Session) ([]UnitWithFiles, error)
}

type unitService struct {
	units repository.UnitRepository
	files repository.FileRepository
	store storage.Storage
	deps
}

func NewUnitService(units repository.UnitRepository, files repository.FileRepository, store storage.Storage, opts ...Option) UnitService {
	return &unitService{units: units, files: files, store: store, deps: newDeps(opts)}
}

func (s *unitService) Create(ctx context.Context, sess *model.Session, in CreateUnitInput) (*model.Unit, error) {
	if err := s.guard.Allow(sess, OpCreateUnit); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if utf8.RuneCountInString(name) > MaxUnitNameLength {
		return nil, fmt.Errorf("%w: unit name longer than %d characters", ErrInvalidInput, MaxUnitNameLength)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	unit := &model.Unit{
		ID:        uuid.NewString(),
		TeacherID: sess.AccountID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		unit.Description = &desc
	}

	created, err := s.units.Create(ctx, unit)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUnit
		}
		return nil, fmt.Errorf("create unit: %w", err)
	}

	s.log.Info("unit_created", map[string]any{"unit_id": created.ID, "teacher_id": created.TeacherID})
	s.notify(ctx, NotificationEvent{Type: model.NotifyUnitCreated, TeacherID: created.TeacherID, UnitID: created.ID})
	return created, nil
}

func (s *unitService) Delete(ctx context.Context, sess *model.Session, unitID string) error {
	ctx, span := tracer.Start(ctx, "UnitService.Delete")
	defer span.End()

	if err := s.guard.Allow(sess, OpDeleteUnit); err != nil {
		return err
	}
	unit, err := findUnit(ctx, s.units, unitID)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeUnit(sess, OpDeleteUnit, unit); err != nil {
		return err
	}

	files, err := s.files.ListByUnit(ctx, unit.ID)
	if err != nil {
		return fmt.Errorf("list unit files: %w", err)
	}
	// Each file goes blob first, then row, so a failure part way never leaves
	// a row pointing at missing bytes; the unit row survives until all are gone.
	// TODO: move blob removal to an outbox so a crash between the two phases
	// cannot strand bytes without a row.
	for _, f := range files {
		if err := removeFile(ctx, s.store, s.files, &f); err != nil {
			return err
		}
	}
	if err := s.units.Delete(ctx, unit.ID); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}

	s.log.Info("unit_deleted", map[string]any{"unit_id": unit.ID, "files_removed": len(files)})
	return nil
}

func (s *unitService) ListMine(ctx context.Context, sess *model.Session) ([]UnitWithFiles, error) {
	if err := s.guard.Allow(sess, OpListUnits); err != nil {
		return nil, err
	}
	units, err := s.units.ListByTeacher(ctx, sess.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	files, err := s.files.ListByTeacher(ctx, sess.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	byUnit := make(map[string][]model.File, len(units))
	for _, f := range files {
		byUnit[f.UnitID] = append(byUnit[f.UnitID], f)
	}
	out := make([]UnitWithFiles, 0, len(units))
	for _, u := range units {
		fs := byUnit[u.ID]
		if fs == nil {
			fs = []model.File{}
		}
		out = append(out, UnitWithFiles{Unit: u, Files: fs})
	}
	return out, nil
}

// findUnit returns nil, nil when the unit does not exist so the guard can decide the error.
func findUnit(ctx context.Context, repo repository.UnitRepository, id string) (*model.Unit, error) {
	if id == "" {
		return nil, nil
	}
	unit, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find unit: %w", err)
	}
	return unit, nil
}

// findFile returns nil, nil when the file does not exist so the guard can decide the error.
func findFile(ctx context.Context, repo repository.FileRepository, id string) (*model.File, error) {
	if id == "" {
		return nil, nil
	}
	f, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

// removeFile deletes the blob, then the row. The row delete is the commit point:
// if the blob delete fails the file stays fully intact.
func removeFile(ctx context.Context, store storage.Storage, repo repository.FileRepository, f *model.File) error {
	if err := store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := repo.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return nil
}
