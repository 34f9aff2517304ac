package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifiers accepted by GENERATION_PROVIDER.
const (
	ProviderFAL       = "fal"
	ProviderBria      = "bria"
	ProviderReplicate = "replicate"
	ProviderOpenAI    = "openai"
)

// Default provider endpoints.
const (
	DefaultFALEndpoint       = "https://fal.run/fal-ai/bria-fibo"
	DefaultBriaEndpoint      = "https://engine.prod.bria-api.com/v1/image/generate"
	DefaultReplicateEndpoint = "https://api.replicate.com/v1/predictions"
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
)

// NukeExportConfig controls the Write node emitted in exported Nuke scripts.
type NukeExportConfig struct {
	// Format is the output file format: exr, hdr, or tiff.
	Format string `yaml:"format"`
	// ColorSpace is linear or sRGB.
	ColorSpace string `yaml:"color_space"`
	// BitDepth is the output color depth (8 or 16).
	BitDepth int `yaml:"bit_depth"`
	// IncludeAlpha keeps the alpha channel in the output.
	IncludeAlpha bool `yaml:"include_alpha"`
	// Compression is the EXR compression scheme.
	Compression string `yaml:"compression"`
}

// DefaultNukeExportConfig returns the 16-bit linear EXR defaults used by the
// post-production pipeline.
func DefaultNukeExportConfig() NukeExportConfig {
	return NukeExportConfig{
		Format:       "exr",
		ColorSpace:   "linear",
		BitDepth:     16,
		IncludeAlpha: true,
		Compression:  "zip",
	}
}

// Config holds all configuration values for the backend. It is loaded once
// at startup and passed by value or pointer into constructors; there is no
// process-wide mutable configuration.
type Config struct {
	// Provider API keys
	FALAPIKey       string
	BriaAPIKey      string
	ReplicateAPIKey string
	OpenAIAPIKey    string

	// Provider endpoints (defaults target production services)
	FALEndpoint       string
	BriaEndpoint      string
	ReplicateEndpoint string
	OpenAIBaseURL     string
	OpenAIImageModel  string

	// Provider selects the generation backend: fal, bria, replicate, openai.
	Provider string

	// Server configuration
	Host                 string
	Port                 int
	WebAPIPassword       string // optional; enables bcrypt-gated API access
	AllowSelfSignedCerts bool

	// Generation settings
	DefaultWidth      int
	DefaultHeight     int
	MaxParallelAgents int
	GenerationTimeout time.Duration

	// Replicate polling
	PollInterval    time.Duration
	PollMaxAttempts int

	// Storage paths
	OutputDir      string
	DatabasePath   string
	MigrationsPath string
	LogFilePath    string

	// FallbackPalettes are the fixed palettes rotated into variant plans
	// after the caller-supplied base palette. Overridable via config.yaml.
	FallbackPalettes [][]string

	// NukeExport holds Nuke script export defaults.
	NukeExport NukeExportConfig
}

// fileConfig is the optional YAML overlay (palette presets and Nuke export
// defaults). Everything else comes from the environment.
type fileConfig struct {
	FallbackPalettes [][]string        `yaml:"fallback_palettes"`
	NukeExport       *NukeExportConfig `yaml:"nuke_export"`
}

// DefaultFallbackPalettes returns the three fixed palettes rotated after the
// base palette in variant planning.
func DefaultFallbackPalettes() [][]string {
	return [][]string{
		{"#2a2a2a", "#f0f0f0", "#d0d0d0"},
		{"#0a0a0a", "#ffffff", "#b0b0b0"},
		{"#3a3a3a", "#fafafa", "#e0e0e0"},
	}
}

// LoadConfig loads configuration from environment variables with sensible
// defaults, then applies the optional YAML overlay named by CONFIG_FILE
// (default "config.yaml", silently skipped when absent).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		FALAPIKey:       os.Getenv("FAL_API_KEY"),
		BriaAPIKey:      os.Getenv("BRIA_API_KEY"),
		ReplicateAPIKey: os.Getenv("REPLICATE_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),

		FALEndpoint:       GetEnvOrDefault("FAL_FIBO_ENDPOINT", DefaultFALEndpoint),
		BriaEndpoint:      GetEnvOrDefault("BRIA_API_ENDPOINT", DefaultBriaEndpoint),
		ReplicateEndpoint: GetEnvOrDefault("REPLICATE_API_ENDPOINT", DefaultReplicateEndpoint),
		OpenAIBaseURL:     GetEnvOrDefault("OPENAI_BASE_URL", DefaultOpenAIBaseURL),
		OpenAIImageModel:  GetEnvOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),

		Provider: GetEnvOrDefault("GENERATION_PROVIDER", ProviderFAL),

		Host:                 GetEnvOrDefault("HOST", "0.0.0.0"),
		Port:                 ParseIntEnv("PORT", 5000),
		WebAPIPassword:       os.Getenv("WEBAPI_PASSWORD"),
		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),

		DefaultWidth:      ParseIntEnv("DEFAULT_WIDTH", DefaultWidth),
		DefaultHeight:     ParseIntEnv("DEFAULT_HEIGHT", DefaultHeight),
		MaxParallelAgents: ParseIntEnv("MAX_PARALLEL_AGENTS", 4),
		GenerationTimeout: ParseDurationEnv("GENERATION_TIMEOUT_SECONDS", 120),

		PollInterval:    ParseDurationEnv("REPLICATE_POLL_SECONDS", 2),
		PollMaxAttempts: ParseIntEnv("REPLICATE_POLL_MAX_ATTEMPTS", 60),

		OutputDir:      GetEnvOrDefault("OUTPUT_DIR", "output"),
		DatabasePath:   GetEnvOrDefault("DATABASE_PATH", "data/studio.db"),
		MigrationsPath: GetEnvOrDefault("MIGRATIONS_PATH", "file://db/migrations"),
		LogFilePath:    GetEnvOrDefault("LOG_FILE", "app.log"),

		FallbackPalettes: DefaultFallbackPalettes(),
		NukeExport:       DefaultNukeExportConfig(),
	}

	if cfg.MaxParallelAgents <= 0 {
		return nil, fmt.Errorf("core: MAX_PARALLEL_AGENTS must be positive, got %d", cfg.MaxParallelAgents)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("core: PORT must be in 1-65535, got %d", cfg.Port)
	}

	if err := cfg.applyFileOverlay(GetEnvOrDefault("CONFIG_FILE", "config.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFileOverlay merges the optional YAML config file into cfg.
// A missing file is not an error; a malformed one is.
func (c *Config) applyFileOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("core: reading config file %s: %w", path, err)
	}

	var overlay fileConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("core: parsing config file %s: %w", path, err)
	}

	if len(overlay.FallbackPalettes) > 0 {
		c.FallbackPalettes = overlay.FallbackPalettes
	}
	if overlay.NukeExport != nil {
		c.NukeExport = *overlay.NukeExport
	}
	return nil
}

// Validate checks that the selected provider has its credentials configured.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderFAL:
		if c.FALAPIKey == "" {
			return ErrMissingAPIKey("FAL_API_KEY")
		}
	case ProviderBria:
		if c.BriaAPIKey == "" {
			return ErrMissingAPIKey("BRIA_API_KEY")
		}
	case ProviderReplicate:
		if c.ReplicateAPIKey == "" {
			return ErrMissingAPIKey("REPLICATE_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return ErrMissingAPIKey("OPENAI_API_KEY")
		}
	default:
		return ErrUnknownProvider(c.Provider)
	}
	return nil
}

// GetHTTPClient creates an HTTP client honoring the TLS and timeout
// configuration. Providers share this so that self-signed endpoints used in
// staging behave consistently.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if cfg != nil && cfg.AllowSelfSignedCerts {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
