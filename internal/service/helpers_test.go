package service

import (
	"io"
	"strings"
	"time"

	"courseportal/internal/logger"
	"courseportal/internal/model"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func testOpts() []Option {
	return []Option{
		WithLogger(logger.New(io.Discard, nil)),
		WithClock(func() time.Time { return fixedNow }),
	}
}

func teacherSession(id string) *model.Session {
	return &model.Session{Token: "tok-" + id, AccountID: id, FullName: "Teacher " + id, Role: model.RoleTeacher}
}

func studentSession(id string) *model.Session {
	return &model.Session{Token: "tok-" + id, AccountID: id, FullName: "Student " + id, Role: model.RoleStudent}
}

func pdf(name, body string) UploadFile {
	return UploadFile{Name: name, ContentType: "application/pdf", Size: int64(len(body)), Content: strings.NewReader(body)}
}

// portal wires the real services over the in-memory stores.
type portal struct {
	db       *memDB
	blobs    *memBlobs
	accounts *memAccounts
	units    UnitService
	files    FileService
	catalog  AccountService
}

func newPortal(maxSize int64) *portal {
	db := newMemDB()
	blobs := newMemBlobs()
	accounts := &memAccounts{}
	return &portal{
		db:       db,
		blobs:    blobs,
		accounts: accounts,
		units:    NewUnitService(memUnits{db}, memFiles{db}, blobs, testOpts()...),
		files:    NewFileService(memUnits{db}, memFiles{db}, blobs, maxSize, 0, testOpts()...),
		catalog:  NewAccountService(accounts, memUnits{db}, memFiles{db}, nil, testOpts()...),
	}
}

func (p *portal) fileCount(unitID string) int {
	p.db.mu.Lock()
	defer p.db.mu.Unlock()
	n := 0
	for _, f := range p.db.files {
		if f.UnitID == unitID {
			n++
		}
	}
	return n
}
