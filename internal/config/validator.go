package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RegisterCustomValidators registers gateway-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"directory_source": oneOfFunc("rest", "graphql", "auto"),
		"cors_mode":        oneOfFunc("cors", "same-origin", "no-cors"),
		"credential_mode":  oneOfFunc("include", "same-origin", "omit"),
		"storage_driver":   oneOfFunc("memory", "sqlite", "file"),
		"duration":         validateDuration,
		"store_slug":       validateSlug,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

func oneOfFunc(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if val == a {
				return true
			}
		}
		return false
	}
}

// validateDuration accepts any positive time.ParseDuration string.
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// Validate validates the Config using struct tags and cross-field rules.
// Returns an error if validation fails, with actionable error messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateStoragePath(); err != nil {
		return err
	}
	if err := c.validateFallbackSlugs(); err != nil {
		return err
	}
	return nil
}

// validateStoragePath ensures persistent drivers have somewhere to write.
func (c *Config) validateStoragePath() error {
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
	}
	return nil
}

// validateFallbackSlugs rejects duplicate explicit slugs in the fallback list.
func (c *Config) validateFallbackSlugs() error {
	seen := make(map[string]int, len(c.Directory.Fallback))
	for i, s := range c.Directory.Fallback {
		if s.Slug == "" {
			continue
		}
		if j, dup := seen[s.Slug]; dup {
			return fmt.Errorf("directory.fallback[%d]: slug %q already used by fallback[%d]", i, s.Slug, j)
		}
		seen[s.Slug] = i
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "directory_source":
		return fmt.Sprintf("%s must be one of: rest graphql auto", field)
	case "cors_mode":
		return fmt.Sprintf("%s must be one of: cors same-origin no-cors", field)
	case "credential_mode":
		return fmt.Sprintf("%s must be one of: include same-origin omit", field)
	case "storage_driver":
		return fmt.Sprintf("%s must be one of: memory sqlite file", field)
	case "duration":
		return fmt.Sprintf("%s must be a positive duration (e.g. 30s, 5m)", field)
	case "store_slug":
		return fmt.Sprintf("%s must be lowercase letters and digits separated by single hyphens", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
