package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bizrecords/internal/model"
)

type MockTrashStore struct {
	mock.Mock
}

func (m *MockTrashStore) Add(ctx context.Context, record model.TrashRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockTrashStore) List(ctx context.Context) ([]model.TrashRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TrashRecord), args.Error(1)
}

func (m *MockTrashStore) FindByID(ctx context.Context, id string) (model.TrashRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.TrashRecord), args.Error(1)
}

func (m *MockTrashStore) FindActive(ctx context.Context, originalType model.OriginalType, originalID string, fingerprint string) (model.TrashRecord, error) {
	args := m.Called(ctx, originalType, originalID, fingerprint)
	return args.Get(0).(model.TrashRecord), args.Error(1)
}

func (m *MockTrashStore) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTrashStore) RemoveAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
