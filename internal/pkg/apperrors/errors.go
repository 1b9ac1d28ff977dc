package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized = errors.New("authentication required")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Catalog errors
var (
	ErrSemesterNotFound      = errors.New("semester not found")
	ErrSemesterAlreadyExists = errors.New("semester with this name already exists")
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseAlreadyExists   = errors.New("course with this code already exists")
	ErrSectionNotFound       = errors.New("section not found")
	ErrRoomNotFound          = errors.New("room not found")
	ErrRoomAlreadyExists     = errors.New("room with this code already exists")
)

// Enrollment errors
var (
	ErrRegistrationNotFound       = errors.New("registration not found")
	ErrAlreadyRegisteredOrPending = errors.New("already enrolled or pending approval for this course")
	ErrInvalidTransition          = errors.New("registration is not pending")
	ErrSectionFull                = errors.New("section is full")
	ErrCapacityExceeded           = errors.New("section capacity exceeded")
	ErrRegistrationWindowClosed   = errors.New("add window is closed for this semester")
)

// Timetable errors
var (
	// ErrPartialWriteFailure means a bulk event write was rolled back; the
	// whole batch may be retried.
	ErrPartialWriteFailure = errors.New("timetable batch write failed")
	// ErrScheduleChanged means the course changed between reading it and
	// writing its events; nothing was written.
	ErrScheduleChanged = errors.New("course schedule changed during regeneration")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// IsNotFound reports whether err is one of the not-found errors
func IsNotFound(err error) bool {
	return Is(err, ErrResourceNotFound,
		ErrSemesterNotFound, ErrCourseNotFound, ErrSectionNotFound, ErrRegistrationNotFound, ErrRoomNotFound)
}

// IsConflict reports whether err is a business-rule conflict. Conflicts are
// surfaced to the caller verbatim and never retried automatically.
func IsConflict(err error) bool {
	return Is(err, ErrConflict,
		ErrResourceAlreadyExists, ErrSemesterAlreadyExists, ErrCourseAlreadyExists, ErrRoomAlreadyExists,
		ErrAlreadyRegisteredOrPending, ErrSectionFull, ErrCapacityExceeded,
		ErrInvalidTransition, ErrRegistrationWindowClosed)
}

// IsRetryable reports whether the caller may safely retry the whole operation
func IsRetryable(err error) bool {
	return Is(err, ErrPartialWriteFailure, ErrScheduleChanged)
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
