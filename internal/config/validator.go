package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "limits.desktop")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. A non-empty result is a fatal startup error: in particular
// a category ceiling below 1 would deadlock every submission in that
// category, so it is never treated as runtime-recoverable.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateSecurity()...)
	errors = append(errors, c.validateTools()...)
	errors = append(errors, c.validateLimits()...)
	errors = append(errors, c.validateShell()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "server.host",
			Value:   c.Server.Host,
			Message: "cannot be empty",
		})
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Value:   c.Server.Port,
			Message: "must be between 1 and 65535",
		})
	}

	return errors
}

// validateSecurity validates the SecurityConfig
func (c *Config) validateSecurity() []ValidationError {
	var errors []ValidationError

	for i, entry := range c.Security.IPAllowlist {
		if strings.TrimSpace(entry) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("security.ip_allowlist[%d]", i),
				Value:   entry,
				Message: "entry cannot be empty",
			})
			continue
		}
		if _, err := parseAllowlistEntry(entry); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("security.ip_allowlist[%d]", i),
				Value:   entry,
				Message: "must be an IP address or CIDR range",
			})
		}
	}

	return errors
}

// validateTools validates the ToolsConfig
func (c *Config) validateTools() []ValidationError {
	var errors []ValidationError

	for i, pattern := range c.Tools.AllowedPaths {
		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("tools.allowed_paths[%d]", i),
				Value:   pattern,
				Message: "pattern cannot be empty",
			})
			continue
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("tools.allowed_paths[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	return errors
}

// validateLimits validates the LimitsConfig
func (c *Config) validateLimits() []ValidationError {
	var errors []ValidationError

	// Upper bound keeps a typo from spawning an absurd slot count
	const maxCeiling = 64

	ceilings := []struct {
		field string
		value int
	}{
		{"limits.desktop", c.Limits.Desktop},
		{"limits.file", c.Limits.File},
		{"limits.query", c.Limits.Query},
		{"limits.shell", c.Limits.Shell},
		{"limits.network", c.Limits.Network},
	}
	for _, ceiling := range ceilings {
		if ceiling.value < 1 {
			errors = append(errors, ValidationError{
				Field:   ceiling.field,
				Value:   ceiling.value,
				Message: "concurrency ceiling must be at least 1",
			})
		}
		if ceiling.value > maxCeiling {
			errors = append(errors, ValidationError{
				Field:   ceiling.field,
				Value:   ceiling.value,
				Message: fmt.Sprintf("exceeds maximum of %d", maxCeiling),
			})
		}
	}

	const maxHistory = 10000
	if c.Limits.History < 1 {
		errors = append(errors, ValidationError{
			Field:   "limits.history",
			Value:   c.Limits.History,
			Message: "must be at least 1",
		})
	}
	if c.Limits.History > maxHistory {
		errors = append(errors, ValidationError{
			Field:   "limits.history",
			Value:   c.Limits.History,
			Message: fmt.Sprintf("exceeds maximum of %d", maxHistory),
		})
	}

	return errors
}

// validateShell validates the ShellConfig
func (c *Config) validateShell() []ValidationError {
	var errors []ValidationError

	const maxTimeoutSeconds = 3600
	if c.Shell.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "shell.timeout_seconds",
			Value:   c.Shell.TimeoutSeconds,
			Message: "must be at least 1",
		})
	}
	if c.Shell.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "shell.timeout_seconds",
			Value:   c.Shell.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeoutSeconds),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
