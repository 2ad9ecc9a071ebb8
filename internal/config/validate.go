// validate.go provides validation for the launch and deploy configs.
//
// Validation collects every problem into a list instead of failing on the
// first one, so an operator editing a config file sees all mistakes in a
// single run.
package config

import (
	"fmt"
	"strings"

	"github.com/interprep-ai/botstrap/internal/model"
)

// ValidationError represents a specific validation failure in a config file.
type ValidationError struct {
	// Field is the config field that failed validation (e.g., "command").
	Field string

	// Message describes what is wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidateLaunchConfig checks a parsed botstrap.json for values that
// would produce a broken launch plan. Every field is optional, so the
// checks only reject values that are present but unusable.
//
// Checks performed:
//   - command: when present, the executable (first element) must be non-empty
//   - tokenVar: when present, must be a plausible environment variable name
//   - directories: entries must be non-empty and relative (the bootstrap
//     creates them under the working directory)
//   - env: keys must be plausible environment variable names
func ValidateLaunchConfig(raw *RawLaunchConfig) []ValidationError {
	var errs []ValidationError

	if raw.Command != nil && (len(raw.Command) == 0 || raw.Command[0] == "") {
		errs = append(errs, ValidationError{
			Field:   "command",
			Message: "command must name an executable as its first element",
		})
	}

	if raw.TokenVar != "" && !isEnvVarName(raw.TokenVar) {
		errs = append(errs, ValidationError{
			Field:   "tokenVar",
			Message: fmt.Sprintf("%q is not a valid environment variable name", raw.TokenVar),
		})
	}

	for _, dir := range raw.Directories {
		if dir == "" {
			errs = append(errs, ValidationError{
				Field:   "directories",
				Message: "directory entries must not be empty",
			})
			continue
		}
		if strings.HasPrefix(dir, "/") {
			errs = append(errs, ValidationError{
				Field:   "directories",
				Message: fmt.Sprintf("%q must be relative to the working directory", dir),
			})
		}
	}

	for key := range raw.Env {
		if !isEnvVarName(key) {
			errs = append(errs, ValidationError{
				Field:   "env",
				Message: fmt.Sprintf("%q is not a valid environment variable name", key),
			})
		}
	}

	return errs
}

// ValidateDeployConfig checks a parsed deploy.yaml for completeness.
//
// Checks performed:
//   - image: required
//   - name: must satisfy the deployment name rules when set
//   - env: entries must be plausible environment variable names
//   - ports/volumes: entries must parse (delegated to PortBindings and
//     VolumeMounts)
func ValidateDeployConfig(cfg *DeployConfig) []ValidationError {
	var errs []ValidationError

	if cfg.Image == "" {
		errs = append(errs, ValidationError{
			Field:   "image",
			Message: "image is required",
		})
	}

	if cfg.Name != "" {
		if err := model.ValidateName(cfg.Name); err != nil {
			errs = append(errs, ValidationError{
				Field:   "name",
				Message: err.Error(),
			})
		}
	}

	for _, name := range cfg.Env {
		if !isEnvVarName(name) {
			errs = append(errs, ValidationError{
				Field:   "env",
				Message: fmt.Sprintf("%q is not a valid environment variable name", name),
			})
		}
	}

	if _, err := cfg.PortBindings(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ports",
			Message: err.Error(),
		})
	}

	if _, err := cfg.VolumeMounts(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "volumes",
			Message: err.Error(),
		})
	}

	return errs
}

// isEnvVarName reports whether s is a plausible POSIX environment
// variable name: letters, digits, and underscores, not starting with
// a digit.
func isEnvVarName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
