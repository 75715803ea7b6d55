package mocks

import (
	"context"

	"github.com/benmeehan/fog-agent/pkg/location"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of the location.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetLocation(ctx context.Context, highAccuracy bool) (location.Location, error) {
	args := m.Called(ctx, highAccuracy)
	return args.Get(0).(location.Location), args.Error(1)
}

func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAccessChecker is a mock implementation of the location.AccessChecker interface
type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) FineLocationGranted() bool {
	args := m.Called()
	return args.Bool(0)
}
