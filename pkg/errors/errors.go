// Package errors defines the structured error type returned by the gateway surface.
// Each error carries a machine readable code and the HTTP status it maps to.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/turtacn/smsgw/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// GatewayError represents a structured error with additional metadata
type GatewayError interface {
	error

	// Code returns the machine readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) GatewayError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) GatewayError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) WithCause(cause error) GatewayError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) GatewayError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// NewError creates a new GatewayError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) GatewayError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) GatewayError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or includes an invalid parameter value.",
		message,
	)
}

// ErrRateLimitExceeded creates a rate limit error. The message is the ledger's own wording
// and is returned to the caller verbatim.
func ErrRateLimitExceeded(message string) GatewayError {
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		"The send quota for the current window has been reached.",
		message,
	)
}

// ErrDeviceFault creates an error for a failure reported by the device itself.
func ErrDeviceFault(message string) GatewayError {
	return NewError(
		constants.ErrCodeDeviceFault,
		http.StatusBadRequest,
		"The device rejected the request.",
		message,
	)
}

// ErrServerError creates a server_error error
func ErrServerError(message string) GatewayError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The gateway encountered an unexpected condition while talking to the device.",
		message,
	)
}

// ErrConfiguration creates an error for a feature that is not configured.
func ErrConfiguration(message string) GatewayError {
	return NewError(
		constants.ErrCodeConfiguration,
		http.StatusBadRequest,
		"The gateway is not configured for this operation.",
		message,
	)
}

// ErrDuplicateRequest creates an error for a replayed idempotency key.
func ErrDuplicateRequest(key string) GatewayError {
	return NewError(
		constants.ErrCodeDuplicateRequest,
		http.StatusConflict,
		"A request with this Idempotency-Key has already been processed.",
		"duplicate request",
	).WithMetadata("idempotency_key", key)
}

// ErrNotFound creates a not_found error
func ErrNotFound(message string) GatewayError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"The requested resource was not found.",
		message,
	)
}

// ================================================================================
// Error Utilities
// ================================================================================

// AsGatewayError finds the first GatewayError in err's chain.
func AsGatewayError(err error) (GatewayError, bool) {
	var gwErr GatewayError
	if stderrors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// IsRateLimitError checks if an error is related to rate limiting
func IsRateLimitError(err error) bool {
	if gwErr, ok := AsGatewayError(err); ok {
		return gwErr.HTTPStatus() == http.StatusTooManyRequests
	}
	return false
}

// ShouldLogError determines if an error should be logged at error level
func ShouldLogError(err error) bool {
	if gwErr, ok := AsGatewayError(err); ok {
		status := gwErr.HTTPStatus()
		return status >= 500
	}
	return true
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses. Status and Message
// keep the shape existing gateway clients parse.
type ErrorResponse struct {
	Status           string                 `json:"status"`
	Message          string                 `json:"message"`
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts a GatewayError to an ErrorResponse
func ToErrorResponse(err GatewayError) *ErrorResponse {
	metadata := err.Metadata()
	if len(metadata) == 0 {
		metadata = nil
	}
	return &ErrorResponse{
		Status:           "error",
		Message:          err.Error(),
		Error:            string(err.Code()),
		ErrorDescription: err.Description(),
		Metadata:         metadata,
	}
}

// ToGenericErrorResponse converts any error to an ErrorResponse
func ToGenericErrorResponse(err error) (int, *ErrorResponse) {
	if gwErr, ok := AsGatewayError(err); ok {
		return gwErr.HTTPStatus(), ToErrorResponse(gwErr)
	}

	return http.StatusInternalServerError, &ErrorResponse{
		Status:           "error",
		Message:          "An unexpected error occurred",
		Error:            string(constants.ErrCodeServerError),
		ErrorDescription: "An unexpected error occurred",
	}
}
