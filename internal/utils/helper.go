package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/go-playground/validator/v10"
)

// NewValidator reports field errors under their JSON names so local and
// server-side field errors share keys.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		if name == "" {
			return toSnake(fld.Name)
		}

		return name
	})

	return validate
}

// ValidateStruct validates data and converts failures to a ValidationError
// carrying one message per field.
func ValidateStruct(validate *validator.Validate, data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		slog.Error("Unexpected validation error", slog.String("error", err.Error()))
		return appErrors.InternalError("Unexpected validation error").WithError(err)
	}

	slog.Debug("Input validation failed", slog.String("error", validationErrs.Error()))

	fields := make(map[string][]string, len(validationErrs))
	for _, fe := range validationErrs {
		field := fieldName(fe)
		fields[field] = append(fields[field], message(fe))
	}

	return appErrors.ValidationError("Please correct the highlighted fields").
		WithFields(fields).
		WithError(validationErrs)
}

// fieldName drops the struct prefix, keeping map keys such as images[image_2].
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "numeric":
		return "A valid number is required."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}

		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}

		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	}

	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

func toSnake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}

			r += 'a' - 'A'
		}

		b.WriteRune(r)
	}

	return b.String()
}
