package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dukex/flowstudio/pkg/models"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Flows(ctx context.Context) ([]*models.Flow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Flow), args.Error(1)
}

func (m *MockPersistence) FlowByID(ctx context.Context, namespace, id string) (*models.Flow, error) {
	args := m.Called(ctx, namespace, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Flow), args.Error(1)
}

func (m *MockPersistence) SaveFlow(ctx context.Context, flow *models.Flow) error {
	args := m.Called(ctx, flow)

	return args.Error(0)
}

func (m *MockPersistence) DeleteFlow(ctx context.Context, namespace, id string) error {
	args := m.Called(ctx, namespace, id)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
