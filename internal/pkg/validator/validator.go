// Package validator wraps the go-playground/validator library to provide
// declarative struct validation with standardized error formatting. Fields
// are validated via `validate:"..."` tags and failures are reported as a
// multi-error chain rooted at ErrValidationFailed.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the root error of every validation failure chain.
// Callers can detect validation failures with errors.Is even when multiple
// field errors are returned.
var ErrValidationFailed = errors.New("struct validation failed")

// validator is the singleton go-playground instance, created on package load.
var validator *gvalidator.Validate

// errStringFormat describes a single field failure, e.g.
// "'From': value '' does not meet the requirements for the 'required' validation".
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError converts raw validator errors into a combined error chain with
// ErrValidationFailed as the root and one formatted message per field.
// Non-validation errors are returned unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks whether the given struct satisfies its validation tags.
// It returns nil on success, or a combined error that includes
// ErrValidationFailed plus one message per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
