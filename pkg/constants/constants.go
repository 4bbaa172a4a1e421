// Package constants holds build information, defaults and shared keys for the SMS gateway.
package constants

import (
	"fmt"
	"time"
)

// ================================================================================
// Build Information
// ================================================================================

// Version and GitHash are overridden at link time:
//
//	go build -ldflags "-X github.com/turtacn/smsgw/pkg/constants.Version=1.2.0 -X github.com/turtacn/smsgw/pkg/constants.GitHash=abc1234"
var (
	Version = "dev"
	GitHash = "unknown"
)

// ServiceName is used for tracing resources and the CLI banner.
const ServiceName = "smsgw"

// VersionFull returns "<version> (<git hash>)".
func VersionFull() string {
	return fmt.Sprintf("%s (%s)", Version, GitHash)
}

// ================================================================================
// Defaults
// ================================================================================

const (
	// DefaultModemURL is the factory address of the device web UI
	DefaultModemURL = "http://192.168.8.1"

	// DefaultDeviceTimeout bounds every device call
	DefaultDeviceTimeout = 10 * time.Second

	// DefaultHTTPPort is the gateway listen port
	DefaultHTTPPort = 8080

	// DefaultShutdownGrace is how long in-flight requests get on shutdown
	DefaultShutdownGrace = 10 * time.Second

	// DefaultHourlyLimit is the global hourly send ceiling
	DefaultHourlyLimit = 100

	// DefaultDailyLimit is the global daily send ceiling
	DefaultDailyLimit = 1000

	// DefaultListCount is how many messages a list returns when unspecified
	DefaultListCount = 20

	// DefaultIdempotencyTTL keeps an Idempotency-Key reserved
	DefaultIdempotencyTTL = 24 * time.Hour

	// AlertCallerName is the caller identity used for forwarded alerts
	AlertCallerName = "alertmanager"

	// HeaderIdempotencyKey carries the client supplied idempotency key
	HeaderIdempotencyKey = "Idempotency-Key"

	// HeaderRequestID carries the request correlation id
	HeaderRequestID = "X-Request-ID"
)

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode is the machine readable error identifier returned in API responses
type ErrorCode string

const (
	ErrCodeInvalidRequest    ErrorCode = "invalid_request"
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
	ErrCodeDeviceFault       ErrorCode = "device_fault"
	ErrCodeServerError       ErrorCode = "server_error"
	ErrCodeConfiguration     ErrorCode = "configuration_error"
	ErrCodeDuplicateRequest  ErrorCode = "duplicate_request"
	ErrCodeNotFound          ErrorCode = "not_found"
)

// ================================================================================
// Logging
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"
)
