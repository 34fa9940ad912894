package errors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ToValidationErrors converts validator.ValidationErrors into our shared type.
func ToValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: fieldErrorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
	}
	return errs
}

func fieldErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("failed validation rule '%s'", err.Tag())
	}
}
