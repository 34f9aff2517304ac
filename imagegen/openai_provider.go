// Package imagegen provides clients for external image-generation services.
//
// openai_provider.go implements the OpenAI DALL-E provider via the
// sashabaranov/go-openai client. Used as an alternative backend when no
// FIBO credentials are configured.
package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studio_backend/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for DALL-E image generation.
//
// Thread safety: safe for concurrent use; the go-openai client handles
// connection pooling.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	downloader *Downloader
}

// NewOpenAIProvider creates a DALL-E provider from configuration.
func NewOpenAIProvider(cfg *core.Config) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, core.ErrMissingAPIKey("OPENAI_API_KEY")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	clientConfig.HTTPClient = core.GetHTTPClient(cfg, timeout)

	model := cfg.OpenAIImageModel
	if model == "" {
		model = "dall-e-3"
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		downloader: NewDownloader(cfg),
	}, nil
}

// Name identifies the provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Model returns the configured image model name.
func (p *OpenAIProvider) Model() string { return p.model }

// Generate creates one image via DALL-E and downloads it.
//
// DALL-E supports a fixed set of sizes; the request dimensions are mapped to
// the nearest supported size string.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	imageReq := openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.model,
		Size:           dalleSize(req.Width, req.Height),
		ResponseFormat: openai.CreateImageResponseFormatURL,
		N:              1,
	}
	if p.model == "dall-e-3" {
		imageReq.Style = openai.CreateImageStyleVivid
	}

	response, err := p.client.CreateImage(ctx, imageReq)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI: %v", ErrGenerationFailed, err)
	}
	if len(response.Data) == 0 || response.Data[0].URL == "" {
		return nil, fmt.Errorf("%w: OpenAI returned no image URL", ErrNoImages)
	}

	imageURL := response.Data[0].URL
	data, contentType, err := p.downloader.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	width, height := sizeDimensions(imageReq.Size)
	return &GenerationResult{
		ImageData: data,
		ImageURL:  imageURL,
		Metadata: Metadata{
			Width:       width,
			Height:      height,
			ContentType: contentType,
		},
	}, nil
}

// dalleSize maps requested dimensions onto a supported DALL-E size string.
func dalleSize(width, height int) string {
	switch {
	case width >= 1792 && height < width:
		return openai.CreateImageSize1792x1024
	case height >= 1792 && width < height:
		return openai.CreateImageSize1024x1792
	case width >= 1024 || height >= 1024:
		return openai.CreateImageSize1024x1024
	default:
		return openai.CreateImageSize512x512
	}
}

// sizeDimensions parses a DALL-E size string back into pixel dimensions.
func sizeDimensions(size string) (int, int) {
	switch size {
	case openai.CreateImageSize1792x1024:
		return 1792, 1024
	case openai.CreateImageSize1024x1792:
		return 1024, 1792
	case openai.CreateImageSize1024x1024:
		return 1024, 1024
	default:
		return 512, 512
	}
}

// Ensure OpenAIProvider implements Provider at compile time.
var _ Provider = (*OpenAIProvider)(nil)
