package mocks

import (
	"context"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of the store.Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) (models.ExplorationSet, error) {
	args := m.Called(ctx)
	set, _ := args.Get(0).(models.ExplorationSet)
	return set, args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, set models.ExplorationSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
