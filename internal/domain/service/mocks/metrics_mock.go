package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordSmsSent(countryCode string) {
	m.Called(countryCode)
}

func (m *MockMetrics) RecordHTTPRequest(endpoint string) {
	m.Called(endpoint)
}

func (m *MockMetrics) SetStoredMessages(count int) {
	m.Called(count)
}

func (m *MockMetrics) RecordDeviceCall(operation, result string, duration time.Duration) {
	m.Called(operation, result, duration)
}

func (m *MockMetrics) RecordRateLimitHit(scope, period string) {
	m.Called(scope, period)
}

// MockUsageObserver is a mock implementation of UsageObserver
type MockUsageObserver struct {
	mock.Mock
}

func (m *MockUsageObserver) ObserveGlobalUsage(hourly, daily int) {
	m.Called(hourly, daily)
}

func (m *MockUsageObserver) ObserveCallerUsage(caller string, hourly, daily int) {
	m.Called(caller, hourly, daily)
}
