package validation

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"studio_backend/core"
)

// CheckResult is the outcome of one configuration check.
type CheckResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator checks the environment-supplied configuration before any
// provider or storage component is constructed.
type ConfigValidator struct {
	envPath string
}

// NewConfigValidator returns a validator reading the default .env path.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{envPath: ".env"}
}

// WithEnvPath overrides the .env file location.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile reports whether a .env file is present. A missing file is
// valid because configuration may come from the process environment.
func (v *ConfigValidator) CheckEnvFile() CheckResult {
	if _, err := os.Stat(v.envPath); err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Valid: true, Message: "no .env file, using process environment"}
		}
		return CheckResult{Valid: false, Message: "cannot read .env file", Error: err}
	}
	return CheckResult{Valid: true, Message: v.envPath + " found"}
}

// CheckProviderSelection verifies GENERATION_PROVIDER names a known backend.
func (v *ConfigValidator) CheckProviderSelection() CheckResult {
	provider := core.GetEnvOrDefault("GENERATION_PROVIDER", core.ProviderFAL)
	switch provider {
	case core.ProviderFAL, core.ProviderBria, core.ProviderReplicate, core.ProviderOpenAI:
		return CheckResult{Valid: true, Message: "provider: " + provider}
	}
	return CheckResult{
		Valid:   false,
		Message: fmt.Sprintf("unknown provider %q", provider),
		Error:   core.ErrUnknownProvider(provider),
	}
}

// providerKeyVars maps each provider to its credential variable.
var providerKeyVars = map[string]string{
	core.ProviderFAL:       "FAL_API_KEY",
	core.ProviderBria:      "BRIA_API_KEY",
	core.ProviderReplicate: "REPLICATE_API_KEY",
	core.ProviderOpenAI:    "OPENAI_API_KEY",
}

// CheckProviderCredentials verifies the selected provider has its API key.
// The key value is never echoed.
func (v *ConfigValidator) CheckProviderCredentials() CheckResult {
	provider := core.GetEnvOrDefault("GENERATION_PROVIDER", core.ProviderFAL)
	keyVar, ok := providerKeyVars[provider]
	if !ok {
		return CheckResult{Valid: false, Message: fmt.Sprintf("unknown provider %q", provider)}
	}
	if os.Getenv(keyVar) == "" {
		return CheckResult{
			Valid:   false,
			Message: keyVar + " is not set",
			Error:   core.ErrMissingAPIKey(keyVar),
		}
	}
	return CheckResult{Valid: true, Message: keyVar + " configured"}
}

// providerEndpointVars maps each provider to its endpoint variable and
// default.
var providerEndpointVars = map[string][2]string{
	core.ProviderFAL:       {"FAL_FIBO_ENDPOINT", core.DefaultFALEndpoint},
	core.ProviderBria:      {"BRIA_API_ENDPOINT", core.DefaultBriaEndpoint},
	core.ProviderReplicate: {"REPLICATE_API_ENDPOINT", core.DefaultReplicateEndpoint},
	core.ProviderOpenAI:    {"OPENAI_BASE_URL", core.DefaultOpenAIBaseURL},
}

// CheckProviderEndpoint verifies the selected provider's endpoint parses as
// an absolute http(s) URL.
func (v *ConfigValidator) CheckProviderEndpoint() CheckResult {
	provider := core.GetEnvOrDefault("GENERATION_PROVIDER", core.ProviderFAL)
	vars, ok := providerEndpointVars[provider]
	if !ok {
		return CheckResult{Valid: false, Message: fmt.Sprintf("unknown provider %q", provider)}
	}
	endpoint := core.GetEnvOrDefault(vars[0], vars[1])
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return CheckResult{
			Valid:   false,
			Message: fmt.Sprintf("%s is not a valid URL", vars[0]),
			Error:   core.ErrInvalidEndpoint(vars[0], endpoint, "must be an absolute http(s) URL"),
		}
	}
	return CheckResult{Valid: true, Message: u.Host}
}

// CheckOutputDir verifies the output directory can be created and written.
func (v *ConfigValidator) CheckOutputDir() CheckResult {
	dir := core.GetEnvOrDefault("OUTPUT_DIR", "output")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{Valid: false, Message: "cannot create " + dir, Error: err}
	}
	probe := filepath.Join(dir, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return CheckResult{Valid: false, Message: dir + " is not writable", Error: err}
	}
	os.Remove(probe)
	return CheckResult{Valid: true, Message: dir + " writable"}
}

// CheckDatabaseDir verifies the database parent directory exists or can be
// created. The schema itself is migrated later.
func (v *ConfigValidator) CheckDatabaseDir() CheckResult {
	path := core.GetEnvOrDefault("DATABASE_PATH", "data/studio.db")
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{Valid: false, Message: "cannot create " + dir, Error: err}
	}
	return CheckResult{Valid: true, Message: path}
}
