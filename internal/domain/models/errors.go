package models

import (
	"errors"
	"fmt"
)

// TransportError reports that the device could not be reached or did not answer in time.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("device %s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response body that matched neither the expected shape nor the
// device error envelope. Body holds the raw response for diagnostics.
type ProtocolError struct {
	Op   string
	Body string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device %s: unexpected response: %v: %s", e.Op, e.Err, e.Body)
	}
	return fmt.Sprintf("device %s: unexpected response: %s", e.Op, e.Body)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// SessionFormatError reports a session value without the "SessionID=" prefix.
type SessionFormatError struct {
	Value string
}

func (e *SessionFormatError) Error() string {
	return fmt.Sprintf("invalid session format: %q lacks the SessionID= prefix", e.Value)
}

// DeviceFault is the device's own error envelope, <error><code/><message/></error>.
type DeviceFault struct {
	Code    int
	Message string
}

func (e *DeviceFault) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device error %d", e.Code)
	}
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

// QuotaScope says whose counter tripped.
type QuotaScope string

const (
	QuotaScopeGlobal QuotaScope = "global"
	QuotaScopeCaller QuotaScope = "caller"
)

// QuotaPeriod is the length of a counting window.
type QuotaPeriod string

const (
	QuotaPeriodHourly QuotaPeriod = "hourly"
	QuotaPeriodDaily  QuotaPeriod = "daily"
)

// QuotaExceededError is returned by the ledger when a ceiling has been reached.
type QuotaExceededError struct {
	Scope   QuotaScope
	Caller  string
	Period  QuotaPeriod
	Ceiling int
}

// Error names the scope and the period that ran out, e.g. "Global daily limit of 500
// reached" or "Client 'ci' hourly limit of 10 reached".
func (e *QuotaExceededError) Error() string {
	if e.Scope == QuotaScopeCaller {
		return fmt.Sprintf("Client '%s' %s limit of %d reached", e.Caller, e.Period, e.Ceiling)
	}
	return fmt.Sprintf("Global %s limit of %d reached", e.Period, e.Ceiling)
}

// IsDeviceFault reports whether err carries a DeviceFault.
func IsDeviceFault(err error) bool {
	var fault *DeviceFault
	return errors.As(err, &fault)
}

// IsQuotaExceeded reports whether err carries a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var quota *QuotaExceededError
	return errors.As(err, &quota)
}
