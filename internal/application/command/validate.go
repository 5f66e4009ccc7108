// Package command contains write operations (CQRS - Commands).
package command

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/pkg/timeutil"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := timeutil.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// FieldError is one failed input constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every failed constraint of a command.
type ValidationError struct {
	Op     string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}
	return fmt.Sprintf("%s: invalid fields: %s", e.Op, strings.Join(parts, ", "))
}

// Is makes ValidationError match shared.ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == shared.ErrValidation
}

// validateStruct runs the struct tags of cmd.
func validateStruct(op string, cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return shared.WrapError("command", op, shared.ErrInvalidInput, "invalid command", err)
	}

	out := &ValidationError{Op: op, Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// dateOrToday parses s, or returns today for an empty s.
func dateOrToday(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return timeutil.Today(), nil
	}
	return timeutil.ParseDate(s)
}
