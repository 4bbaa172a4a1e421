package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/turtacn/smsgw/internal/domain/models"
)

// MockQuotaLedger is a mock implementation of QuotaLedger
type MockQuotaLedger struct {
	mock.Mock
}

func (m *MockQuotaLedger) CheckAndIncrement(caller string) error {
	args := m.Called(caller)
	return args.Error(0)
}

func (m *MockQuotaLedger) Status() models.QuotaStatus {
	args := m.Called()
	return args.Get(0).(models.QuotaStatus)
}

func (m *MockQuotaLedger) CallerStatus() []models.CallerQuotaStatus {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.CallerQuotaStatus)
}
