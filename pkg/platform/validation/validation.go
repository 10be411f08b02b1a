// Package validation wraps a process-wide go-playground/validator instance and
// turns its field errors into CodeValidation domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dErrors "casevault/pkg/domain-errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// Struct validates v against its `validate` tags. Failures are reported as a
// single CodeValidation error naming every offending field.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return dErrors.New(dErrors.CodeValidation, strings.Join(msgs, "; "))
}

// Var validates a single value with a tag expression such as "required,email".
func Var(field string, value any, tag string) error {
	if err := instance().Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return dErrors.New(dErrors.CodeValidation, field+" "+strings.TrimPrefix(describe(fieldErrs[0]), " "))
		}
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid "+field)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid identifier", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "dive":
		return fmt.Sprintf("%s contains an invalid entry", name)
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
