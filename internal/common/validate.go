package common

import (
	"errors"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes a single rejected field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidateStruct runs tag based validation and converts failures into a ValidationError
// whose Details hold the rejected fields.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewAppError(CodeValidation, "invalid input", err)
	}
	details := make([]FieldError, 0, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		names = append(names, fe.Field()+" ("+fe.Tag()+")")
	}
	appErr := ValidationError("invalid %s", strings.Join(names, ", "))
	appErr.Details = details
	return appErr
}
