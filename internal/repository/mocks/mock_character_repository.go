package mocks

import (
	"context"

	"charkeep/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCharacterRepository struct {
	mock.Mock
}

func (m *MockCharacterRepository) Load(ctx context.Context, id string) (*model.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Character), args.Error(1)
}

func (m *MockCharacterRepository) LoadAll(ctx context.Context) ([]model.Character, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Character), args.Error(1)
}

func (m *MockCharacterRepository) Save(ctx context.Context, id string, ch *model.Character) error {
	args := m.Called(ctx, id, ch)
	return args.Error(0)
}

func (m *MockCharacterRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
