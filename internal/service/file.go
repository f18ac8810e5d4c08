package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"courseportal/internal/model"
	"courseportal/internal/repository"
	"courseportal/internal/storage"
)

// UploadResult reports a batch. Accepted and Rejected each keep input order,
// are disjoint, and together cover every input file once.
type UploadResult struct {
	Accepted []model.File `json:"accepted"`
	Rejected []Rejection  `json:"rejected"`
}

// FileContent is an opened file. The caller must close Body.
type FileContent struct {
	File        *model.File
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// FileService covers intake, publication and retrieval of unit files.
type FileService interface {
	// Upload validates and stores each file as a draft in the unit.
	// One file's failure never stops the rest of the batch.
	Upload(ctx context.Context, sess *model.Session, unitID string, files []UploadFile, tag model.Tag) (*UploadResult, error)

	// PublishUnit publishes every draft in the unit and returns how many changed.
	PublishUnit(ctx context.Context, sess *model.Session, unitID string) (int64, error)

	// SetPublished sets one file's published flag to the given value.
	SetPublished(ctx context.Context, sess *model.Session, fileID string, published bool) (*model.File, error)

	// Delete removes a file's bytes, then its record.
	Delete(ctx context.Context, sess *model.Session, fileID string) error

	// Open streams a file the session may see. Every refusal is ErrNotFound.
	Open(ctx context.Context, sess *model.Session, fileID string) (*FileContent, error)

	// Preview is Open for inline display, under its own access policy.
	Preview(ctx context.Context, sess *model.Session, fileID string) (*FileContent, error)

	// Link returns a time-limited direct download URL. Every refusal is ErrNotFound.
	Link(ctx context.Context, sess *model.Session, fileID string) (string, error)
}

type fileService struct {
	units         repository.UnitRepository
	files         repository.FileRepository
	store         storage.Storage
	maxSize       int64
	presignExpiry time.Duration
	deps
}

// NewFileService constructs a FileService. Non-positive limits fall back to
// MaxFileSize and a 15 minute link expiry.
func NewFileService(units repository.UnitRepository, files repository.FileRepository, store storage.Storage, maxSize int64, presignExpiry time.Duration, opts ...Option) FileService {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &fileService{
		units:         units,
		files:         files,
		store:         store,
		maxSize:       maxSize,
		presignExpiry: presignExpiry,
		deps:          newDeps(opts),
	}
}

func (s *fileService) Upload(ctx context.Context, sess *model.Session, unitID string, files []UploadFile, tag model.Tag) (*UploadResult, error) {
	ctx, span := tracer.Start(ctx, "FileService.Upload")
	defer span.End()
	span.SetAttributes(attribute.Int("upload.files", len(files)))

	if err := s.guard.Allow(sess, OpUpload); err != nil {
		return nil, err
	}
	unit, err := findUnit(ctx, s.units, unitID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeUnit(sess, OpUpload, unit); err != nil {
		return nil, err
	}

	if tag == "" {
		tag = model.DefaultTag
	}
	if !tag.Valid() {
		return nil, fmt.Errorf("%w: unknown tag %q", ErrInvalidInput, tag)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files found in request", ErrInvalidInput)
	}

	res := &UploadResult{Accepted: []model.File{}, Rejected: []Rejection{}}
	for _, in := range files {
		f, err := s.storeOne(ctx, unit, in, tag)
		if err != nil {
			rj := rejection(in.Name, err)
			res.Rejected = append(res.Rejected, rj)
			s.metrics.UploadRejected(rj.Code)
			if rj.Code == "STORAGE_ERROR" {
				s.log.Error("upload_failed", err, map[string]any{"unit_id": unit.ID, "file_name": in.Name})
			}
			continue
		}
		res.Accepted = append(res.Accepted, *f)
		s.metrics.UploadAccepted()
		s.notify(ctx, NotificationEvent{Type: model.NotifyFileUploaded, TeacherID: unit.TeacherID, UnitID: unit.ID, FileID: &f.ID})
	}

	s.log.Info("files_uploaded", map[string]any{
		"unit_id":  unit.ID,
		"accepted": len(res.Accepted),
		"rejected": len(res.Rejected),
	})
	return res, nil
}

// storeOne puts the blob, then the row. If the row cannot be written the blob is removed again.
func (s *fileService) storeOne(ctx context.Context, unit *model.Unit, in UploadFile, tag model.Tag) (*model.File, error) {
	mediaType, err := validateUpload(in, s.maxSize)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := storage.ObjectKey(now, in.Name)
	info, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: mediaType,
		Metadata:    map[string]string{"original-filename": in.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upload to storage: %v", ErrStorage, err)
	}

	size := info.Size
	if size <= 0 {
		size = in.Size
	}
	f := &model.File{
		ID:           uuid.NewString(),
		TeacherID:    unit.TeacherID,
		UnitID:       unit.ID,
		OriginalName: in.Name,
		StoragePath:  key,
		FileSize:     size,
		FileType:     mediaType,
		Tag:          tag,
		IsPublished:  false,
		UploadedAt:   now.Truncate(time.Microsecond),
	}
	stored, err := s.files.Create(ctx, f)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("%w: db save failed: %v; rollback delete failed: %v", ErrStorage, err, delErr)
		}
		return nil, fmt.Errorf("%w: db save failed: %v", ErrStorage, err)
	}
	return stored, nil
}

func (s *fileService) PublishUnit(ctx context.Context, sess *model.Session, unitID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "FileService.PublishUnit")
	defer span.End()

	if err := s.guard.Allow(sess, OpPublishUnit); err != nil {
		return 0, err
	}
	unit, err := findUnit(ctx, s.units, unitID)
	if err != nil {
		return 0, err
	}
	if err := s.guard.AuthorizeUnit(sess, OpPublishUnit, unit); err != nil {
		return 0, err
	}

	n, err := s.files.PublishUnit(ctx, unit.ID)
	if err != nil {
		return 0, fmt.Errorf("publish unit: %w", err)
	}
	span.SetAttributes(attribute.Int64("files.published", n))
	s.metrics.FilesPublished(n)
	s.log.Info("unit_published", map[string]any{"unit_id": unit.ID, "published_count": n})
	if n > 0 {
		s.notify(ctx, NotificationEvent{Type: model.NotifyFilePublished, TeacherID: unit.TeacherID, UnitID: unit.ID})
	}
	return n, nil
}

func (s *fileService) SetPublished(ctx context.Context, sess *model.Session, fileID string, published bool) (*model.File, error) {
	if err := s.guard.Allow(sess, OpPublishFile); err != nil {
		return nil, err
	}
	f, err := findFile(ctx, s.files, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeFile(sess, OpPublishFile, f); err != nil {
		return nil, err
	}

	updated, err := s.files.SetPublished(ctx, f.ID, published)
	if err != nil {
		// Deleted between the lookup and the update.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.guard.Denial(OpPublishFile)
		}
		return nil, fmt.Errorf("set published: %w", err)
	}
	if published && !f.IsPublished {
		s.metrics.FilesPublished(1)
		s.notify(ctx, NotificationEvent{Type: model.NotifyFilePublished, TeacherID: f.TeacherID, UnitID: f.UnitID, FileID: &updated.ID})
	}
	s.log.Info("file_publish_state_changed", map[string]any{"file_id": updated.ID, "is_published": updated.IsPublished})
	return updated, nil
}

func (s *fileService) Delete(ctx context.Context, sess *model.Session, fileID string) error {
	if err := s.guard.Allow(sess, OpDeleteFile); err != nil {
		return err
	}
	f, err := findFile(ctx, s.files, fileID)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeFile(sess, OpDeleteFile, f); err != nil {
		return err
	}
	if err := removeFile(ctx, s.store, s.files, f); err != nil {
		return err
	}
	s.log.Info("file_deleted", map[string]any{"file_id": f.ID, "unit_id": f.UnitID})
	return nil
}

func (s *fileService) Open(ctx context.Context, sess *model.Session, fileID string) (*FileContent, error) {
	return s.open(ctx, sess, OpDownload, fileID)
}

func (s *fileService) Preview(ctx context.Context, sess *model.Session, fileID string) (*FileContent, error) {
	return s.open(ctx, sess, OpPreview, fileID)
}

func (s *fileService) open(ctx context.Context, sess *model.Session, op Operation, fileID string) (*FileContent, error) {
	f, err := s.authorizedFile(ctx, sess, op, fileID)
	if err != nil {
		return nil, err
	}
	body, info, err := s.store.Get(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.log.Error("file_blob_missing", err, map[string]any{"file_id": f.ID})
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open storage: %w", err)
	}

	ct := info.ContentType
	if ct == "" {
		ct = f.FileType
	}
	size := info.Size
	if size <= 0 {
		size = f.FileSize
	}
	return &FileContent{File: f, Body: body, Size: size, ContentType: ct}, nil
}

func (s *fileService) Link(ctx context.Context, sess *model.Session, fileID string) (string, error) {
	f, err := s.authorizedFile(ctx, sess, OpLink, fileID)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, f.StoragePath, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

func (s *fileService) authorizedFile(ctx context.Context, sess *model.Session, op Operation, fileID string) (*model.File, error) {
	if err := s.guard.Allow(sess, op); err != nil {
		return nil, err
	}
	f, err := findFile(ctx, s.files, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeFile(sess, op, f); err != nil {
		return nil, err
	}
	return f, nil
}
