package config

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is every problem found in a config.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, err := range ve {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// OutputFormats lists the accepted values of Config.Output.
var OutputFormats = []string{"text", "json", "yaml"}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) ValidationErrors {
	var errors ValidationErrors

	if d, err := config.ReadTimeoutDuration(); err != nil {
		errors = append(errors, ValidationError{
			Path:    "readTimeout",
			Message: fmt.Sprintf("invalid duration %q", config.ReadTimeout),
		})
	} else if d < 0 {
		errors = append(errors, ValidationError{
			Path:    "readTimeout",
			Message: "must not be negative",
		})
	}

	if config.MaxRedirects < -1 {
		errors = append(errors, ValidationError{
			Path:    "maxRedirects",
			Message: "must be -1 (no redirects), 0 (default) or positive",
		})
	}

	if config.Output != "" && !slices.Contains(OutputFormats, config.Output) {
		errors = append(errors, ValidationError{
			Path:    "output",
			Message: fmt.Sprintf("must be one of %s", strings.Join(OutputFormats, ", ")),
		})
	}

	for name := range config.Headers {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " :\t") {
			errors = append(errors, ValidationError{
				Path:    "headers",
				Message: fmt.Sprintf("invalid header name %q", name),
			})
			continue
		}
		if http.CanonicalHeaderKey(name) == "Accept" {
			errors = append(errors, ValidationError{
				Path:    "headers." + name,
				Message: "accept is always application/json and cannot be configured",
			})
		}
	}

	return errors
}
