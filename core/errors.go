package core

import "fmt"

// ConfigError represents a configuration-related error with an actionable
// instruction for resolution.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingAPIKey   = "MISSING_API_KEY"
	ErrCodeUnknownProvider = "UNKNOWN_PROVIDER"
	ErrCodeMissingConfig   = "MISSING_CONFIG"
	ErrCodeInvalidEndpoint = "INVALID_ENDPOINT"
)

// ErrMissingAPIKey returns an error for a missing provider credential.
func ErrMissingAPIKey(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingAPIKey,
		Message: fmt.Sprintf("Missing API key: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file or switch GENERATION_PROVIDER", varName),
	}
}

// ErrUnknownProvider returns an error for an unrecognized provider name.
func ErrUnknownProvider(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownProvider,
		Message: fmt.Sprintf("Unknown generation provider: %q", name),
		Action:  "Set GENERATION_PROVIDER to one of: fal, bria, replicate, openai",
	}
}

// ErrMissingConfig returns an error for missing required configuration.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// ErrInvalidEndpoint returns an error for a malformed endpoint URL.
func ErrInvalidEndpoint(varName, url, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidEndpoint,
		Message: fmt.Sprintf("Invalid %s URL '%s': %s", varName, url, reason),
		Action:  fmt.Sprintf("Set %s to a valid https URL", varName),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}
