package types

import (
	"errors"
	"fmt"
)

// Standard error types
type ErrorType string

const (
	ErrTypeConfig         ErrorType = "CONFIG_ERROR"
	ErrTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrTypeInvalidValue   ErrorType = "INVALID_VALUE"
	ErrTypeNetwork        ErrorType = "NETWORK_ERROR"
	ErrTypeUpstream       ErrorType = "UPSTREAM_ERROR"
	ErrTypeInternal       ErrorType = "INTERNAL_ERROR"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeBadRequest     ErrorType = "BAD_REQUEST"
	ErrTypeRateLimit      ErrorType = "RATE_LIMIT"
	ErrTypeTimeout        ErrorType = "TIMEOUT"
	ErrTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
	ErrTypeUnavailable    ErrorType = "UNAVAILABLE"
)

// StandardError provides consistent error formatting
type StandardError struct {
	Type    ErrorType
	Message string
	Details map[string]any
	Cause   error
}

func (e *StandardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// IsErrorType reports whether err, or any error it wraps, is a StandardError of type t.
func IsErrorType(err error, t ErrorType) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// StatusCode returns the upstream status code carried by err, or 0.
func StatusCode(err error) int {
	var se *StandardError
	if !errors.As(err, &se) {
		return 0
	}
	code, _ := se.Details["status_code"].(int)
	return code
}

// Error constructors for common cases

func NewConfigError(msg string, cause error) error {
	return &StandardError{
		Type:    ErrTypeConfig,
		Message: msg,
		Cause:   cause,
	}
}

func NewValidationError(field, msg string) error {
	return &StandardError{
		Type:    ErrTypeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, msg),
		Details: map[string]any{"field": field},
	}
}

func NewInvalidValueError(field, value, msg string) error {
	return &StandardError{
		Type:    ErrTypeInvalidValue,
		Message: fmt.Sprintf("invalid value for %s: %s (%s)", field, value, msg),
		Details: map[string]any{"field": field, "value": value},
	}
}

func NewNetworkError(url string, cause error) error {
	return &StandardError{
		Type:    ErrTypeNetwork,
		Message: fmt.Sprintf("network request to %s failed", url),
		Details: map[string]any{"url": url},
		Cause:   cause,
	}
}

func NewUpstreamError(url string, statusCode int, body string) error {
	return &StandardError{
		Type:    ErrTypeUpstream,
		Message: fmt.Sprintf("upstream %s responded with status %d", url, statusCode),
		Details: map[string]any{"url": url, "status_code": statusCode, "body": body},
	}
}

func NewNotFoundError(resource string) error {
	return &StandardError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"resource": resource},
	}
}

func NewBadRequestError(msg string) error {
	return &StandardError{
		Type:    ErrTypeBadRequest,
		Message: msg,
	}
}

func NewRateLimitError(endpoint string) error {
	return &StandardError{
		Type:    ErrTypeRateLimit,
		Message: fmt.Sprintf("rate limit exceeded for endpoint: %s", endpoint),
		Details: map[string]any{"endpoint": endpoint},
	}
}

func NewTimeoutError(operation string) error {
	return &StandardError{
		Type:    ErrTypeTimeout,
		Message: fmt.Sprintf("%s operation timed out", operation),
		Details: map[string]any{"operation": operation},
	}
}

func NewInternalError(msg string, cause error) error {
	return &StandardError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

func NewNotImplementedError(feature string) error {
	return &StandardError{
		Type:    ErrTypeNotImplemented,
		Message: fmt.Sprintf("%s is not implemented", feature),
		Details: map[string]any{"feature": feature},
	}
}

func NewUnavailableError(service, reason string) error {
	return &StandardError{
		Type:    ErrTypeUnavailable,
		Message: fmt.Sprintf("%s is unavailable: %s", service, reason),
		Details: map[string]any{"service": service},
	}
}
