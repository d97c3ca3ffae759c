package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var inputValidator = newInputValidator()

// newInputValidator reports fields by their form tag so that errors line up
// with the names the client submitted.
func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and maps failures to
// per-field messages. Nested fields are joined with "_", so Billing.Line1
// tagged billing/address_line_1 reports as billing_address_line_1.
func validateStruct(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldKey(fe.Namespace())] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "This field is required."
	case "gte", "min":
		return "Ensure this value is at least " + fe.Param() + "."
	case "max", "lte":
		return "Ensure this value is at most " + fe.Param() + "."
	default:
		return "Enter a valid value."
	}
}

func fieldKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, "_")
}
