//nolint:revive // types is a standard Go package name pattern
package types

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every record; validator.Validate caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		return Audience(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("abshttp", func(fl validator.FieldLevel) bool {
		return IsAbsoluteHTTPURL(fl.Field().String())
	})
	return v
}

// Validator exposes the shared validator so request types outside this package use the same rules.
func Validator() *validator.Validate {
	return validate
}

// IsAbsoluteHTTPURL reports whether s is a well-formed absolute http(s) URL.
func IsAbsoluteHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FieldErrors flattens validator errors into "field: rule" messages.
func FieldErrors(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msg := fe.Namespace() + ": failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		messages = append(messages, msg)
	}
	return messages
}
