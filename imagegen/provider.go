// Package imagegen provides clients for external image-generation services.
//
// provider.go defines the Provider contract shared by all generation
// backends (FAL.AI FIBO, Bria.ai, Replicate, OpenAI DALL-E). Each provider
// turns a GenerationRequest into image bytes plus metadata; everything past
// this boundary (planning, fan-out, scoring) treats the provider as an
// opaque collaborator.
package imagegen

import (
	"context"
	"fmt"

	"studio_backend/core"
)

// GenerationRequest holds the parameters for a single generation call.
type GenerationRequest struct {
	// Prompt is the full text description, including any variant clauses.
	Prompt string

	// Width and Height are the requested output dimensions in pixels.
	Width  int
	Height int
}

// Metadata describes the generated image as reported by the provider.
type Metadata struct {
	// Width and Height are the actual output dimensions. Zero when the
	// provider does not report them.
	Width  int `json:"width"`
	Height int `json:"height"`

	// ContentType is the MIME type of the image, when reported.
	ContentType string `json:"content_type,omitempty"`
}

// GenerationResult is the successful output of one generation call.
type GenerationResult struct {
	// ImageData is the raw image bytes, already downloaded.
	ImageData []byte

	// ImageURL is the temporary provider-hosted URL the bytes came from.
	// Provider URLs expire; persist ImageData promptly.
	ImageURL string

	// Metadata carries provider-reported dimensions and content type.
	Metadata Metadata
}

// Provider is the interface implemented by each generation backend.
//
// Generate returns the downloaded image and metadata, or an error. Latency,
// polling, and retry policy are the provider's concern; callers treat any
// returned error as a single failed generation.
type Provider interface {
	// Name identifies the provider for logging and persistence.
	Name() string

	// Generate creates one image from the request.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// NewProviderFromConfig selects and constructs the provider named by
// cfg.Provider.
func NewProviderFromConfig(cfg *core.Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}

	switch cfg.Provider {
	case core.ProviderFAL:
		return NewFALProvider(cfg)
	case core.ProviderBria:
		return NewBriaProvider(cfg)
	case core.ProviderReplicate:
		return NewReplicateProvider(cfg)
	case core.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, core.ErrUnknownProvider(cfg.Provider)
	}
}
