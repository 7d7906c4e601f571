// Package validation wraps go-playground/validator with the custom rules this API needs.
// A single *validator.Validate is safe for concurrent use and caches struct metadata,
// so the package keeps one instance and exposes it through Struct and Var.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// simpleEmailPattern is deliberately loose: something, an @, something, a dot, something.
var simpleEmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// "simple_email" accepts anything matching simpleEmailPattern.
	// The stock "email" tag is RFC-strict and rejects addresses the old service accepted.
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return simpleEmailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates a struct using its `validate:"..."` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// Var validates a single value against a tag string, e.g. Var(email, "required,simple_email").
func Var(field any, tag string) error {
	return validate.Var(field, tag)
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Two addresses are considered the same subscriber when their normalized forms are equal.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email matches the simple address pattern.
func ValidEmail(email string) bool {
	return Var(email, "required,simple_email") == nil
}

// Message turns a validation error into a short client-facing sentence.
// Only the first failing field is reported.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "simple_email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
