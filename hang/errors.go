package hang

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// Transport
	ErrorConnection
	ErrorDisconnected
	ErrorNotConnected
	ErrorTimeout

	// Protocol
	ErrorDecode
	ErrorSerialization

	// Authentication
	ErrorNotAuthenticated
	ErrorAuthFailed

	// Configuration
	ErrorInvalidConfig
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorConnection:
		return "connection_error"
	case ErrorDisconnected:
		return "disconnected"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorTimeout:
		return "timeout"
	case ErrorDecode:
		return "decode_error"
	case ErrorSerialization:
		return "serialization_error"
	case ErrorNotAuthenticated:
		return "not_authenticated"
	case ErrorAuthFailed:
		return "auth_failed"
	case ErrorInvalidConfig:
		return "invalid_config"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// HangError is a structured error with code and context.
type HangError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *HangError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *HangError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is comparison by code.
func (e *HangError) Is(target error) bool {
	t, ok := target.(*HangError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new HangError with the given code and message.
func NewError(code ErrorCode, message string) *HangError {
	return &HangError{Code: code, Message: message}
}

// WrapError wraps an existing error with a HangError.
func WrapError(code ErrorCode, message string, err error) *HangError {
	return &HangError{Code: code, Message: message, Wrapped: err}
}

// IsConnectionError reports whether err is a transport-level failure.
func IsConnectionError(err error) bool {
	code, ok := codeOf(err)
	if !ok {
		return false
	}
	return code == ErrorConnection || code == ErrorDisconnected ||
		code == ErrorNotConnected || code == ErrorTimeout
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	code, ok := codeOf(err)
	if !ok {
		return false
	}
	return code == ErrorNotAuthenticated || code == ErrorAuthFailed
}

// IsDecodeError reports whether err came from a dropped malformed frame.
func IsDecodeError(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrorDecode
}

func codeOf(err error) (ErrorCode, bool) {
	if err == nil {
		return ErrorUnknown, false
	}
	var he *HangError
	if !errors.As(err, &he) {
		return ErrorUnknown, false
	}
	return he.Code, true
}
