package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/BradenHooton/alumninet/internal/models"
	pkgauth "github.com/BradenHooton/alumninet/pkg/auth"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateRequest validates a request struct and returns one entry per
// failing field, or nil.
func ValidateRequest(req any) []pkghttp.FieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []pkghttp.FieldError{{Field: "body", Message: err.Error()}}
	}

	fields := make([]pkghttp.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, pkghttp.FieldError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return fields
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// writeServiceError maps the errors services return onto HTTP responses.
// Anything unrecognised is a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	var pwErr *pkgauth.PasswordValidationError
	var fieldErr *models.ValidationError

	switch {
	case errors.As(err, &pwErr):
		fields := make([]pkghttp.FieldError, 0, len(pwErr.Errors))
		for _, msg := range pwErr.Errors {
			fields = append(fields, pkghttp.FieldError{Field: "password", Message: msg})
		}
		pkghttp.WriteValidationError(w, "Password does not meet requirements", fields)
	case errors.As(err, &fieldErr):
		pkghttp.WriteValidationError(w, "Validation failed", []pkghttp.FieldError{
			{Field: fieldErr.Field, Message: fieldErr.Message},
		})
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication failed")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "An account with this email already exists")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
