package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of questions.Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSource) Fetch(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}
