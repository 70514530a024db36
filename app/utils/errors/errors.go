package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents specific error types
type ErrorCode string

const (
	// Authentication errors (missing or invalid credential of either kind)
	ErrCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrCodeMissingToken      ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired      ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidServiceKey ErrorCode = "INVALID_SERVICE_KEY"

	// Authorization errors (valid credential, disallowed target)
	ErrCodeForbidden ErrorCode = "FORBIDDEN"

	// User management errors
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"

	// Validation errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMalformedEmail   ErrorCode = "MALFORMED_EMAIL"

	// Conflict errors. An email collision is a resolvable state conflict,
	// not malformed input, so it maps to 409 rather than 422.
	ErrCodeEmailCollision ErrorCode = "EMAIL_COLLISION"
	ErrCodeConflict       ErrorCode = "CONFLICT"

	// System errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeConfigError   ErrorCode = "CONFIG_ERROR"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: getHTTPStatusCode(code),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
		Cause:      cause,
	}
}

// Wrapf wraps an existing error with AppError and formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: getHTTPStatusCode(code),
		Cause:      cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// GetHTTPStatusCode gets the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsAuthenticationError reports whether the error is one of the
// credential-failure kinds. These map to 401 and are never coerced
// into generic handling by intermediate layers.
func IsAuthenticationError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeUnauthenticated, ErrCodeMissingToken, ErrCodeInvalidToken,
		ErrCodeTokenExpired, ErrCodeInvalidServiceKey:
		return true
	}
	return false
}

// getHTTPStatusCode maps error codes to HTTP status codes
func getHTTPStatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthenticated, ErrCodeMissingToken, ErrCodeInvalidToken,
		ErrCodeTokenExpired, ErrCodeInvalidServiceKey:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUserNotFound, ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeEmailCollision, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeValidationFailed, ErrCodeMalformedEmail:
		return http.StatusUnprocessableEntity
	case ErrCodeInternalError, ErrCodeDatabaseError, ErrCodeConfigError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Predefined common errors

// Authentication errors
var (
	ErrUnauthenticated   = New(ErrCodeUnauthenticated, "authentication required")
	ErrMissingToken      = New(ErrCodeMissingToken, "authentication token is missing")
	ErrInvalidToken      = New(ErrCodeInvalidToken, "invalid authentication token")
	ErrTokenExpired      = New(ErrCodeTokenExpired, "authentication token has expired")
	ErrInvalidServiceKey = New(ErrCodeInvalidServiceKey, "invalid service credential")
)

// Authorization errors
var (
	ErrForbidden = New(ErrCodeForbidden, "access denied")
)

// User errors
var (
	ErrUserNotFound = New(ErrCodeUserNotFound, "user not found")
	ErrNotFound     = New(ErrCodeNotFound, "resource not found")
)

// Validation and conflict errors
var (
	ErrValidationFailed = New(ErrCodeValidationFailed, "validation failed")
	ErrMalformedEmail   = New(ErrCodeMalformedEmail, "malformed email address")
	ErrEmailCollision   = New(ErrCodeEmailCollision, "email already claimed by another identity")
	ErrConflict         = New(ErrCodeConflict, "resource conflict")
)

// System errors
var (
	ErrInternalError = New(ErrCodeInternalError, "internal server error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrConfigError   = New(ErrCodeConfigError, "configuration error")
)

// Helper functions for creating contextual errors

// NewUnauthenticated creates an authentication error with context
func NewUnauthenticated(details string) *AppError {
	return New(ErrCodeUnauthenticated, "authentication required").WithDetails(details)
}

// NewForbidden creates a forbidden error with context
func NewForbidden(details string) *AppError {
	return New(ErrCodeForbidden, "access denied").WithDetails(details)
}

// NewNotFound creates a not found error with context
func NewNotFound(resource string) *AppError {
	return Newf(ErrCodeNotFound, "%s not found", resource)
}

// NewValidationError creates a validation error with details
func NewValidationError(details string) *AppError {
	return New(ErrCodeValidationFailed, "validation failed").WithDetails(details)
}

// NewEmailCollision creates an email collision error carrying the
// conflicting identity reference so the caller can decide remediation.
func NewEmailCollision(email, conflictingAuthID string) *AppError {
	return New(ErrCodeEmailCollision, "email already claimed by another identity").
		WithContext("email", email).
		WithContext("conflicting_external_auth_id", conflictingAuthID)
}

// NewInternalError creates an internal error with cause
func NewInternalError(cause error) *AppError {
	return Wrap(ErrCodeInternalError, "internal server error", cause)
}

// NewDatabaseError creates a database error with cause
func NewDatabaseError(cause error) *AppError {
	return Wrap(ErrCodeDatabaseError, "database operation failed", cause)
}
