package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive values in log output.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns match credential shapes that may leak through free-form
// log values (provider keys, bearer tokens, inline assignments).
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),        // OpenAI keys
	regexp.MustCompile(`(?i)(r8_[a-zA-Z0-9]{20,})`),          // Replicate tokens
	regexp.MustCompile(`(?i)([a-f0-9]{32})`),                 // generic 32-char hex keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`), // bearer tokens
	regexp.MustCompile(`(?i)(key\s+[a-zA-Z0-9:_-]{20,})`),    // "Key <id>:<secret>" auth headers
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveFieldNames flag structured fields whose value must never be
// logged, regardless of shape.
var sensitiveFieldNames = []string{
	"FAL_KEY",
	"BRIA_API_KEY",
	"REPLICATE_API_TOKEN",
	"OPENAI_API_KEY",
	"WEBAPI_PWD",
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
}

// RedactSensitiveData replaces any recognized credential patterns in value.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// IsSensitiveField reports whether a field name indicates credential data.
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}

// RedactField redacts a value when either its field name or its content
// indicates credentials.
func RedactField(fieldName, fieldValue string) string {
	if IsSensitiveField(fieldName) {
		return RedactedPlaceholder
	}
	return RedactSensitiveData(fieldValue)
}

// ContainsSensitiveData reports whether value matches any credential shape.
func ContainsSensitiveData(value string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
