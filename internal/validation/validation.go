// Package validation validates configuration structs.
//
// It uses the `validator` library to enforce rules defined in
// struct tags and turns validation errors into messages that
// name the failing key the way it is configured (server.port),
// not the Go field (Server.Port).
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single validation issue for a specific key.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors is every validation issue of one struct.
type FieldErrors []FieldError

func (f FieldErrors) Error() string {
	messages := make([]string, 0, len(f))
	for _, err := range f {
		messages = append(messages, err.Field+" "+err.Message)
	}
	return strings.Join(messages, "; ")
}

// New returns a validator that reports fields by their koanf key.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	return validate
}

// Struct validates v and returns FieldErrors when any rule fails.
//
// Errors that are not about field rules (e.g. v is not a struct) are
// returned unchanged.
func Struct(v interface{}) error {
	err := New().Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fieldErrors := make(FieldErrors, 0, len(validationErrors))
	for _, err := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   key(err.Namespace()),
			Message: message(err),
		})
	}

	return fieldErrors
}

// key drops the root struct name: "Config.server.port" -> "server.port".
func key(namespace string) string {
	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}
	return namespace
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		// min means length for strings and slices, value for numbers.
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", err.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must have at least %s items", err.Param())
		default:
			return fmt.Sprintf("must be at least %s", err.Param())
		}

	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "numeric":
		return "must be numeric"

	case "startswith":
		return fmt.Sprintf("must start with %q", err.Param())

	default:
		if err.Param() != "" {
			return fmt.Sprintf("failed %s:%s", err.Tag(), err.Param())
		}
		return "failed " + err.Tag()
	}
}
