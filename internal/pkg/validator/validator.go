package validator

import (
	"errors"
	"reflect"
	"strings"

	validatorlib "github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validatorlib.Validate {
	v := validatorlib.New()
	// Report fields under their json names so error payloads match the
	// request body the client actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the struct's validate tags. Returns nil when valid,
// otherwise a field-to-message map suitable for an error response.
func Validate(v interface{}) map[string]string {
	if err := validate.Struct(v); err != nil {
		return Messages(err)
	}
	return nil
}

// Messages converts a validation error into client readable text keyed
// by field name. Returns nil for errors that carry no field detail.
func Messages(err error) map[string]string {
	var verrs validatorlib.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validatorlib.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a phone number in international format"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "is invalid"
	}
}
