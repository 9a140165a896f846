// Package errors provides coded errors so callers can tell failure reasons
// apart without inspecting provider-specific error values.
//
// Error codes are grouped by concern:
//   - General errors (1-99)
//   - Configuration errors (100-199)
//   - Credential and authentication errors (200-299)
//   - Market data errors (300-399)
//   - Storage errors (400-499)
//
// Usage:
//
//	err := errors.Wrap(errors.ErrCodeCSVWrite, "failed to write TCS.csv", cause)
//	if errors.HasCode(err, errors.ErrCodeNoDataFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a failure with a code, a human-readable message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf attaches a code and formatted message to cause.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error renders "<code name>: <message>[: <cause>]", e.g.
// "provider_error: fetch TCS.NS: context deadline exceeded".
func (e *Error) Error() string {
	msg := e.Code.String() + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GetCode extracts the ErrorCode from err. Errors that are not *Error
// report ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// CodeName returns the snake_case code recorded for a per-symbol or auth
// outcome. A nil error has no code and yields "".
func CodeName(err error) string {
	if err == nil {
		return ""
	}
	return GetCode(err).String()
}

// IsMarketDataError reports whether err came from the market data provider
// rather than from local storage or configuration.
func IsMarketDataError(err error) bool {
	code := GetCode(err)
	return code >= ErrCodeMarketDataFetchFailed && code < ErrCodeDataNotFound
}
