package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRewrite(ctx context.Context, rw Rewrite) (Rewrite, error) {
	args := m.Called(ctx, rw)
	return args.Get(0).(Rewrite), args.Error(1)
}

func (m *MockStore) GetRewrite(ctx context.Context, id uuid.UUID) (Rewrite, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Rewrite), args.Error(1)
}

func (m *MockStore) ListRewrites(ctx context.Context, sessionID uuid.UUID) ([]Rewrite, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Rewrite), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
