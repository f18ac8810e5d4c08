package mocks

import (
	"context"

	"courseportal/internal/model"
	"courseportal/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, sess *model.Session, unitID string, files []service.UploadFile, tag model.Tag) (*service.UploadResult, error) {
	args := m.Called(ctx, sess, unitID, files, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockFileService) PublishUnit(ctx context.Context, sess *model.Session, unitID string) (int64, error) {
	args := m.Called(ctx, sess, unitID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileService) SetPublished(ctx context.Context, sess *model.Session, fileID string, published bool) (*model.File, error) {
	args := m.Called(ctx, sess, fileID, published)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, sess *model.Session, fileID string) error {
	args := m.Called(ctx, sess, fileID)
	return args.Error(0)
}

func (m *MockFileService) Open(ctx context.Context, sess *model.Session, fileID string) (*service.FileContent, error) {
	args := m.Called(ctx, sess, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileContent), args.Error(1)
}

func (m *MockFileService) Preview(ctx context.Context, sess *model.Session, fileID string) (*service.FileContent, error) {
	args := m.Called(ctx, sess, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileContent), args.Error(1)
}

func (m *MockFileService) Link(ctx context.Context, sess *model.Session, fileID string) (string, error) {
	args := m.Called(ctx, sess, fileID)
	return args.String(0), args.Error(1)
}
