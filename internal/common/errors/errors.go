// Package errors provides standardized error handling for the HTTP surface.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Registry errors
const (
	ErrCodeActivityNotFound  ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeCapacityExceeded  ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeNotRegistered     ErrorCode = "NOT_REGISTERED"
)

// Request / infrastructure errors
const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus is the response status for this error's code.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError is returned when the activity name is not in the registry.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
	}
}

func NewAlreadyRegisteredError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyRegistered,
		Message:   "Student is already signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

func NewCapacityExceededError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCapacityExceeded,
		Message:   "Activity is full",
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
	}
}

func NewNotRegisteredError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotRegistered,
		Message:   "Student is not signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a malformed request (missing path or query values).
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   details,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError hides the cause from clients; Details keeps it for logs.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Code Mapping
// ==========================

var httpStatusMapping = map[ErrorCode]int{
	ErrCodeActivityNotFound:  http.StatusNotFound,
	ErrCodeAlreadyRegistered: http.StatusBadRequest,
	ErrCodeCapacityExceeded:  http.StatusBadRequest,
	ErrCodeNotRegistered:     http.StatusBadRequest,
	ErrCodeInvalidRequest:    http.StatusUnprocessableEntity,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus maps an error code to a response status; unknown codes are 500.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsExpected reports whether the code is a normal client-driven outcome
// rather than a fault.
func IsExpected(code ErrorCode) bool {
	return HTTPStatus(code) < http.StatusInternalServerError
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ACTIVITY") ||
		strings.Contains(codeStr, "REGISTERED") ||
		strings.Contains(codeStr, "CAPACITY"):
		return "REGISTRY"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
