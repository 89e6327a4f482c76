package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError unified application error interface
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError basic error structure that implements AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Admin-auth-related errors (the scoring-config hot-swap endpoint)
	ErrAuthNotFound = NewBaseError(
		http.StatusUnauthorized,
		"AUTH_NOT_FOUND",
		"Authentication method not found",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid admin credentials",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"An account already exists for this email",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_INVALID",
		"Invalid or expired token",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing error",
		"",
	)

	ErrPasswordForbiddenWords = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_FORBIDDEN_WORDS",
		"Password contains forbidden words or patterns",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	// Dispatch taxonomy (spec §7). These are NEVER returned as HTTP errors —
	// the dispatch handlers surface them as a 200-class failure_reason.
	// They exist as AppError values only so internal callers that do want to
	// treat a failed dispatch as an error (e.g. CLI tooling, batch retries)
	// can do so uniformly via errors.As.
	ErrUnresolvedAddress = NewBaseError(
		http.StatusOK,
		"unresolved-address",
		"order address could not be resolved to a coordinate",
		"",
	)

	ErrNoCapacity = NewBaseError(
		http.StatusOK,
		"no-capacity",
		"no vehicle survived the capacity/weight filter",
		"",
	)

	ErrInfeasibleAll = NewBaseError(
		http.StatusOK,
		"infeasible-all",
		"every surviving candidate would violate a deadline",
		"",
	)

	ErrTimeBudgetExceeded = NewBaseError(
		http.StatusOK,
		"time-budget-exceeded",
		"dispatch deadline reached before a pick was finalized",
		"",
	)
)

// DatabaseExecute error structure that implements AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a Database-related errors
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "Database execute failed").Error()
}

// HTTPCode returns HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execute failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
