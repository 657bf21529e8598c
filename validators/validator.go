package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quillhub/quill/backend/internal/apperr"
)

// CustomValidator plugs go-playground/validator into echo.Context.Validate
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns an apperr validation error describing every failed field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return apperr.Validation(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + ": this field is required"
	case "oneof":
		return fmt.Sprintf("%s: wrong value, must be one of [%s]", field, fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
	case "email":
		return field + ": enter a valid email address"
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}
