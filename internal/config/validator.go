package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// newValidator returns a validator with the custom tags used by config, registry
// and manifest structs registered.
func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		spec := fl.Field().String()
		if spec == "" {
			return true
		}
		_, err := cron.ParseStandard(spec)
		return err == nil
	})

	_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return isHTTPURL(fl.Field().String())
	})

	return validate
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}
	if err := newValidator().Struct(cfg); err != nil {
		return formatValidationError("configuration", err)
	}
	return nil
}

// formatValidationError flattens validator errors into one readable message per field.
func formatValidationError(subject string, err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%s validation error: %w", subject, err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := e.Namespace()
		if idx := strings.Index(fieldName, "."); idx >= 0 {
			fieldName = fieldName[idx+1:]
		}
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("%s validation failed:\n  %s", subject, strings.Join(messages, "\n  "))
}

// ValidateStruct validates any struct carrying validate tags with the config rule set.
func ValidateStruct(subject string, v interface{}) error {
	if err := newValidator().Struct(v); err != nil {
		return formatValidationError(subject, err)
	}
	return nil
}
