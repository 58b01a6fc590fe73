package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeInvalidSnapshot   = "INVALID_SNAPSHOT"
	ErrCodeNoQuestions       = "NO_QUESTIONS"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeSessionActive     = "SESSION_ACTIVE"
	ErrCodeLedgerUnavailable = "LEDGER_UNAVAILABLE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewSourceUnavailableError reports that a question source could not be fetched.
func NewSourceUnavailableError(source string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeSourceUnavailable,
		Message: fmt.Sprintf("question source unavailable: %s", source),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewInvalidSnapshotError reports an uploaded progress file that could not be parsed.
func NewInvalidSnapshotError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidSnapshot,
		Message: "invalid progress file",
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// NewNoQuestionsError reports an empty selection after mastered questions are removed.
func NewNoQuestionsError() *AppError {
	return &AppError{
		Code:    ErrCodeNoQuestions,
		Message: "no questions available: reset progress or select more sources",
		Status:  http.StatusConflict,
	}
}

// NewInvalidTransitionError reports a quiz operation called in the wrong state.
func NewInvalidTransitionError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTransition,
		Message: "operation not allowed in the current quiz state",
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// NewSessionActiveError reports an attempt to start a quiz while one is in progress.
func NewSessionActiveError(sessionID string) *AppError {
	return &AppError{
		Code:    ErrCodeSessionActive,
		Message: fmt.Sprintf("a quiz is already in progress: %s", sessionID),
		Status:  http.StatusConflict,
	}
}

// NewLedgerUnavailableError reports that stored progress could not be read,
// so nothing may be written over it.
func NewLedgerUnavailableError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeLedgerUnavailable,
		Message: "saved progress could not be read; try again later",
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}
