// Package apperrors provides the structured error type returned across the API.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidQuery            ErrorCode = "INVALID_QUERY"
	ErrCodeServiceNotFound         ErrorCode = "SERVICE_NOT_FOUND"
	ErrCodeCatalogUnavailable      ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogFetchFailed      ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeBookingValidationFailed ErrorCode = "BOOKING_VALIDATION_FAILED"
	ErrCodeBookingSubmitFailed     ErrorCode = "BOOKING_SUBMIT_FAILED"
	ErrCodeCacheUnavailable        ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeRateLimited             ErrorCode = "RATE_LIMITED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewInvalidQueryError creates a non-retryable query validation error.
func NewInvalidQueryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuery,
		Message:   "Invalid catalog query",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceNotFoundError is returned for unknown or undecodable service tokens.
func NewServiceNotFoundError(token string) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceNotFound,
		Message:   "Service not found",
		Details:   fmt.Sprintf("token: %s", token),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError is returned while no catalog snapshot has been loaded.
func NewCatalogUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Catalog has not been loaded yet",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError wraps an upstream catalog failure.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Failed to fetch catalog",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBookingValidationError creates a non-retryable booking validation error.
func NewBookingValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingValidationFailed,
		Message:   "Booking request is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBookingSubmitFailedError wraps a failure from the remote booking API.
func NewBookingSubmitFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingSubmitFailed,
		Message:   "Failed to submit booking",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError is returned by cache admin endpoints without redis.
func NewCacheUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "cache not available",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError is returned when a caller exceeds its request budget.
func NewRateLimitedError(ip string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests from your IP",
		Retryable: true,
		Metadata:  map[string]interface{}{"ip": ip, "retry_after": "1 second"},
		Timestamp: time.Now().UTC(),
	}
}

// AsStandard normalizes any error into a StandardError.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the response status used by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidQuery, ErrCodeBookingValidationFailed:
		return http.StatusBadRequest
	case ErrCodeServiceNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeCatalogUnavailable, ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeCatalogFetchFailed, ErrCodeBookingSubmitFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
