// Package validation wraps go-playground/validator with JSON-oriented error
// reporting: failed fields are keyed by their json tag name and exposed as
// JSON-Pointer style references for problem detail bodies.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

type FieldViolation struct {
	Pointer string
	Detail  string
}

// FieldErrors is the typed condition for input validation failures. The
// error translation layer turns it into a 400 problem with per-field detail.
type FieldErrors struct {
	Violations []FieldViolation
}

func (e *FieldErrors) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Pointer)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Struct validates v and returns a *FieldErrors describing every failed
// field, or nil when the value passes.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &FieldErrors{Violations: make([]FieldViolation, 0, len(verrs))}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, FieldViolation{
			Pointer: "#/" + fe.Field(),
			Detail:  message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
