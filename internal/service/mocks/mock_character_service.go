package mocks

import (
	"context"
	"io"

	"charkeep/internal/model"
	"charkeep/internal/service"
	"charkeep/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockCharacterService struct {
	mock.Mock
}

func (m *MockCharacterService) List(ctx context.Context) ([]model.Character, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Character), args.Error(1)
}

func (m *MockCharacterService) Get(ctx context.Context, id string) (*model.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Character), args.Error(1)
}

func (m *MockCharacterService) Create(ctx context.Context, ch *model.Character, img *service.ImageUpload) (*model.Character, error) {
	args := m.Called(ctx, ch, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Character), args.Error(1)
}

func (m *MockCharacterService) Update(ctx context.Context, id string, ch *model.Character, img *service.ImageUpload) (*model.Character, error) {
	args := m.Called(ctx, id, ch, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Character), args.Error(1)
}

func (m *MockCharacterService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCharacterService) Portrait(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
