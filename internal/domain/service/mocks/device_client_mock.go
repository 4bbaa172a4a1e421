package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/smsgw/internal/domain/models"
)

// MockDeviceClient is a mock implementation of DeviceClient
type MockDeviceClient struct {
	mock.Mock
}

func (m *MockDeviceClient) AcquireSession(ctx context.Context) (models.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Session), args.Error(1)
}

func (m *MockDeviceClient) ListMessages(ctx context.Context, session models.Session, params models.ListParams) (*models.ListResult, error) {
	args := m.Called(ctx, session, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListResult), args.Error(1)
}

func (m *MockDeviceClient) SendMessage(ctx context.Context, session models.Session, to, content string, dryRun bool) error {
	args := m.Called(ctx, session, to, content, dryRun)
	return args.Error(0)
}
