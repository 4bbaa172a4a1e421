// Package service defines the interfaces the application layer depends on.
package service

import (
	"context"
	"time"

	"github.com/turtacn/smsgw/internal/domain/models"
)

// DeviceClient speaks the device's session-authenticated XML protocol.
// Implementations are stateless between calls; the session is passed in explicitly.
type DeviceClient interface {
	// AcquireSession fetches a fresh session id and verification token.
	AcquireSession(ctx context.Context) (models.Session, error)

	// ListMessages reads one page of stored messages.
	ListMessages(ctx context.Context, session models.Session, params models.ListParams) (*models.ListResult, error)

	// SendMessage submits one SMS. With dryRun set no request is made and nil is returned.
	SendMessage(ctx context.Context, session models.Session, to, content string, dryRun bool) error
}

// QuotaLedger admits or rejects sends against hourly and daily ceilings.
type QuotaLedger interface {
	// CheckAndIncrement tests every applicable window and, only if all pass, counts one
	// admission in each. An empty caller is accounted globally only.
	CheckAndIncrement(caller string) error

	// Status returns the global windows without counting anything.
	Status() models.QuotaStatus

	// CallerStatus returns every configured caller's windows, sorted by name.
	CallerStatus() []models.CallerQuotaStatus
}

// UsageObserver receives counter values after each admission.
type UsageObserver interface {
	ObserveGlobalUsage(hourly, daily int)
	ObserveCallerUsage(caller string, hourly, daily int)
}

// Metrics defines the interface for collecting gateway metrics.
// This abstraction keeps the application layer independent of Prometheus.
type Metrics interface {
	// RecordSmsSent counts a message accepted by the device, tagged with its dialing code.
	RecordSmsSent(countryCode string)

	// RecordHTTPRequest counts a request to a gateway endpoint.
	RecordHTTPRequest(endpoint string)

	// SetStoredMessages records the count the device reported on the last list.
	SetStoredMessages(count int)

	// RecordDeviceCall records the latency and outcome of one device call.
	RecordDeviceCall(operation, result string, duration time.Duration)

	// RecordRateLimitHit records a rejected admission.
	RecordRateLimitHit(scope, period string)
}

// IdempotencyStore remembers keys of requests that have already been accepted.
type IdempotencyStore interface {
	// Reserve records key for ttl. It returns false if the key was already present.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so the request may be retried.
	Release(ctx context.Context, key string) error
}
