package mocks

import (
	"context"

	"courseportal/internal/model"
	"courseportal/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockUnitService struct {
	mock.Mock
}

func (m *MockUnitService) Create(ctx context.Context, sess *model.Session, in service.CreateUnitInput) (*model.Unit, error) {
	args := m.Called(ctx, sess, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Unit), args.Error(1)
}

func (m *MockUnitService) Delete(ctx context.Context, sess *model.Session, unitID string) error {
	args := m.Called(ctx, sess, unitID)
	return args.Error(0)
}

func (m *MockUnitService) ListMine(ctx context.Context, sess *model.Session) ([]service.UnitWithFiles, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.UnitWithFiles), args.Error(1)
}
