package mocks

import (
	"context"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockPlaygroundExecutor is a mock implementation of playground.Executor.
type MockPlaygroundExecutor struct {
	mock.Mock
}

func (m *MockPlaygroundExecutor) Execute(ctx context.Context, node models.Node) (*models.PlaygroundExecutionData, error) {
	args := m.Called(ctx, node)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.PlaygroundExecutionData), args.Error(1)
}
