package errors

import (
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal     = "internal_error"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeValidation   = "validation_error"
	ErrCodeDatabase     = "database_error"
	ErrCodeMail         = "mail_error"
	ErrCodeStorage      = "storage_error"
	ErrCodeRateLimited  = "rate_limited"

	// Password reset flow
	ErrCodeTokenInvalid = "token_invalid"
	ErrCodeTokenUsed    = "token_used"
	ErrCodeTokenExpired = "token_expired"

	// Entitlements
	ErrCodeNoTokens      = "no_tokens"
	ErrCodeFeatureLocked = "feature_locked"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Common error constructors

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates a forbidden error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// MailError creates an email provider error
func MailError(err error) *AppError {
	return Wrap(err, ErrCodeMail, "Failed to send email", http.StatusInternalServerError)
}

// StorageError creates an object storage error
func StorageError(err error) *AppError {
	return Wrap(err, ErrCodeStorage, "Storage operation failed", http.StatusInternalServerError)
}

// RateLimited creates a rate limited error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimited, message, http.StatusTooManyRequests)
}

// TokenInvalid creates an error for a reset token that does not exist
func TokenInvalid() *AppError {
	return New(ErrCodeTokenInvalid, "Reset token is invalid", http.StatusBadRequest)
}

// TokenUsed creates an error for a reset token that was already consumed
func TokenUsed() *AppError {
	return New(ErrCodeTokenUsed, "Reset token has already been used", http.StatusBadRequest)
}

// TokenExpired creates an error for a reset token past its expiry
func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, "Reset token has expired", http.StatusBadRequest)
}

// NoTokens creates an error for an exhausted correction token balance
func NoTokens() *AppError {
	return New(ErrCodeNoTokens, "No correction tokens available", http.StatusForbidden)
}

// FeatureLocked creates an error for a plan that does not grant a feature
func FeatureLocked(feature string) *AppError {
	return New(ErrCodeFeatureLocked, fmt.Sprintf("Current plan does not include %s", feature), http.StatusForbidden)
}
