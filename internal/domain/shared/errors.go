// Package shared holds error kinds common to every domain package.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError carries the failing domain and operation alongside an error kind.
type DomainError struct {
	Domain  string // "student", "grade", "attendance"
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches either the kind or the wrapped error.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError creates a DomainError without an underlying cause.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError creates a DomainError around err.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// Validationf builds a validation error with a formatted message.
func Validationf(domain, op, format string, args ...any) *DomainError {
	return NewDomainError(domain, op, ErrValidation, fmt.Sprintf(format, args...))
}

// Student aggregate errors.
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student ID already in use")
	ErrInvalidEmail         = NewDomainError("student", "Validate", ErrInvalidFormat, "email is invalid")
)

// Grade errors.
var (
	ErrInvalidMaxMarks      = NewDomainError("grade", "Validate", ErrValueOutOfRange, "max marks must be greater than zero")
	ErrInvalidObtainedMarks = NewDomainError("grade", "Validate", ErrValueOutOfRange, "obtained marks must be between 0 and max marks")
	ErrInvalidCategory      = NewDomainError("grade", "Validate", ErrInvalidInput, "category must be exam, assignment, quiz or project")
	ErrPercentageMismatch   = NewDomainError("grade", "Validate", ErrInvalidInput, "percentage does not match obtained/max marks")
)

// Attendance errors.
var (
	ErrInvalidAttendanceStatus = NewDomainError("attendance", "Validate", ErrInvalidInput, "status must be present, absent or late")
)

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAlreadyExists reports whether err is a uniqueness conflict.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}
