// Package validation checks configuration structs against their validate tags.
package validation

import (
	"errors"
	"fmt"
	"sync"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidation is the first error of every failed validation.
var ErrValidation = errors.New("validation error")

var instance = sync.OnceValue(func() *gvalidator.Validate {
	return gvalidator.New(gvalidator.WithRequiredStructEnabled())
})

// Validate checks v and returns ErrValidation joined with one error per
// failing field.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs gvalidator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make([]error, 0, len(fieldErrs)+1)
	errs = append(errs, ErrValidation)
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s: value %v fails %q", fe.Namespace(), fe.Value(), fe.ActualTag()))
	}
	return errors.Join(errs...)
}
