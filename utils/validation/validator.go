package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errs[field] = fmt.Sprintf("%s is required", field)
			case "max":
				errs[field] = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
			case "oneof":
				errs[field] = fmt.Sprintf("%s must be one of: %s", field, e.Param())
			default:
				errs[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
	}

	return errs
}

// Message flattens validation errors into one sentence for the error envelope
func Message(err error) string {
	errs := FormatValidationErrors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = errs[field]
	}
	return strings.Join(parts, "; ")
}
