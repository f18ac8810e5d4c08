package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"time"

	"courseportal/internal/model"
	"courseportal/internal/repository"
	"courseportal/internal/storage"
)

// memDB backs the in-memory unit and file repositories used by the property tests.
// It mirrors the schema rules: unique (teacher, name), the composite file->unit
// foreign key, and the unit delete cascade.
type memDB struct {
	mu        sync.Mutex
	units     map[string]model.Unit
	unitOrder []string
	files     map[string]model.File
	fileOrder []string
}

func newMemDB() *memDB {
	return &memDB{units: map[string]model.Unit{}, files: map[string]model.File{}}
}

type memUnits struct{ db *memDB }

func (r memUnits) Create(_ context.Context, u *model.Unit) (*model.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.units {
		if existing.TeacherID == u.TeacherID && existing.Name == u.Name {
			return nil, repository.ErrDuplicate
		}
	}
	r.db.units[u.ID] = *u
	r.db.unitOrder = append(r.db.unitOrder, u.ID)
	out := *u
	return &out, nil
}

func (r memUnits) FindByID(_ context.Context, id string) (*model.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.units[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r memUnits) ListByTeacher(_ context.Context, teacherID string) ([]model.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []model.Unit{}
	for _, id := range r.db.unitOrder {
		if u, ok := r.db.units[id]; ok && u.TeacherID == teacherID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUnits) ListWithPublishedFiles(_ context.Context) ([]model.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []model.Unit{}
	for _, id := range r.db.unitOrder {
		u, ok := r.db.units[id]
		if !ok {
			continue
		}
		for _, f := range r.db.files {
			if f.UnitID == id && f.IsPublished {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (r memUnits) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.units, id)
	for fid, f := range r.db.files {
		if f.UnitID == id {
			delete(r.db.files, fid)
		}
	}
	return nil
}

type memFiles struct{ db *memDB }

func (r memFiles) Create(_ context.Context, f *model.File) (*model.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.units[f.UnitID]
	if !ok || u.TeacherID != f.TeacherID {
		return nil, errors.New("violates foreign key files_unit_teacher_fkey")
	}
	r.db.files[f.ID] = *f
	r.db.fileOrder = append(r.db.fileOrder, f.ID)
	out := *f
	return &out, nil
}

func (r memFiles) FindByID(_ context.Context, id string) (*model.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.files[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &f, nil
}

func (r memFiles) list(keep func(model.File) bool) []model.File {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []model.File{}
	for _, id := range r.db.fileOrder {
		if f, ok := r.db.files[id]; ok && keep(f) {
			out = append(out, f)
		}
	}
	return out
}

func (r memFiles) ListByUnit(_ context.Context, unitID string) ([]model.File, error) {
	return r.list(func(f model.File) bool { return f.UnitID == unitID }), nil
}

func (r memFiles) ListByTeacher(_ context.Context, teacherID string) ([]model.File, error) {
	return r.list(func(f model.File) bool { return f.TeacherID == teacherID }), nil
}

func (r memFiles) ListPublished(_ context.Context) ([]model.File, error) {
	return r.list(func(f model.File) bool { return f.IsPublished }), nil
}

func (r memFiles) PublishUnit(_ context.Context, unitID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, f := range r.db.files {
		if f.UnitID == unitID && !f.IsPublished {
			f.IsPublished = true
			r.db.files[id] = f
			n++
		}
	}
	return n, nil
}

func (r memFiles) SetPublished(_ context.Context, id string, published bool) (*model.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.files[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	f.IsPublished = published
	r.db.files[id] = f
	return &f, nil
}

func (r memFiles) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.files, id)
	return nil
}

type memAccounts struct {
	mu   sync.Mutex
	rows []model.Account
}

func (r *memAccounts) Create(_ context.Context, acc *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.Email == acc.Email {
			return nil, repository.ErrDuplicate
		}
	}
	r.rows = append(r.rows, *acc)
	out := *acc
	return &out, nil
}

func (r *memAccounts) FindByID(_ context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memAccounts) FindByEmailAndRole(_ context.Context, email string, role model.Role) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.Email == email && a.Role == role {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memAccounts) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccounts) ListByRole(_ context.Context, role model.Role) ([]model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Account{}
	for _, a := range r.rows {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

type memSessions struct {
	mu   sync.Mutex
	rows map[string]model.Session
}

func newMemSessions() *memSessions { return &memSessions{rows: map[string]model.Session{}} }

func (r *memSessions) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.Token] = *s
	return nil
}

func (r *memSessions) FindByToken(_ context.Context, token string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *memSessions) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, token)
	return nil
}

func (r *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, s := range r.rows {
		if !now.Before(s.ExpiresAt) {
			delete(r.rows, token)
			n++
		}
	}
	return n, nil
}

// memBlobs is an in-memory storage.Storage.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	if b.failPut {
		return storage.ObjectInfo{}, errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: opt.ContentType}, nil
}

func (b *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.test/" + key, nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

var (
	_ repository.AccountRepository = (*memAccounts)(nil)
	_ repository.SessionRepository = (*memSessions)(nil)
	_ repository.UnitRepository    = memUnits{}
	_ repository.FileRepository    = memFiles{}
	_ storage.Storage              = (*memBlobs)(nil)
)
