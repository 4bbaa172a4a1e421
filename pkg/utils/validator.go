package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/turtacn/smsgw/pkg/errors"
)

var defaultValidator *validator.Validate

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{2,31}$`)

func init() {
	defaultValidator = validator.New()
	defaultValidator.RegisterValidation("phone", validatePhone)
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	return defaultValidator
}

// ValidateStruct validates a struct using the default validator.
// It returns an invalid_request error listing every failing field.
func ValidateStruct(s interface{}) errors.GatewayError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		field := toSnakeCase(fe.Field())
		msg := formatValidationError(fe)
		details[field] = msg
		messages = append(messages, field+" "+msg)
	}
	return errors.ErrInvalidRequest(strings.Join(messages, "; ")).WithMetadata("fields", details)
}

// validatePhone accepts digits with an optional leading '+', spaces and dashes.
func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone":
		return "must be a phone number"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// toSnakeCase converts a string from CamelCase to snake_case.
func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
