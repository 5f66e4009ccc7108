package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_KindMatching(t *testing.T) {
	assert.True(t, IsNotFound(ErrStudentNotFound))
	assert.True(t, IsAlreadyExists(ErrStudentAlreadyExists))
	assert.True(t, IsValidation(ErrInvalidMaxMarks))
	assert.True(t, IsValidation(ErrInvalidEmail))
	assert.False(t, IsValidation(ErrStudentNotFound))
}

func TestDomainError_WrappedThroughFmt(t *testing.T) {
	err := fmt.Errorf("repo: %w", ErrStudentNotFound)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestWrapError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError("student", "Save", ErrServiceUnavailable, "store unavailable", cause)

	assert.Equal(t, "student.Save: store unavailable: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestValidationf(t *testing.T) {
	err := Validationf("student", "Create", "field %s is required", "name")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "student.Create: field name is required", err.Error())
}
