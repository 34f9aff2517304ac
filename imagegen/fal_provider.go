// Package imagegen provides clients for external image-generation services.
//
// fal_provider.go implements the FAL.AI FIBO provider, the default
// generation backend. FIBO accepts a structured JSON design request and
// responds synchronously with hosted image URLs.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio_backend/core"
)

// FALProvider implements Provider against the FAL.AI FIBO endpoint.
//
// Thread safety: safe for concurrent use; the underlying http.Client
// handles connection pooling.
type FALProvider struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	downloader *Downloader
}

// falRequest is the FIBO-compatible generation payload.
type falRequest struct {
	Prompt             string       `json:"prompt"`
	ImageSize          falImageSize `json:"image_size"`
	NumImages          int          `json:"num_images"`
	SyncMode           bool         `json:"sync_mode"`
	EnableSafetyChecks bool         `json:"enable_safety_checks"`
	OutputFormat       string       `json:"output_format"`
	ExpandPrompt       bool         `json:"expand_prompt"`
}

type falImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// falResponse is the subset of the FIBO response the backend consumes.
type falResponse struct {
	Images []falImage `json:"images"`
}

type falImage struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}

// NewFALProvider creates a FAL.AI FIBO provider from configuration.
// Returns an error when the API key is missing.
func NewFALProvider(cfg *core.Config) (*FALProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	if cfg.FALAPIKey == "" {
		return nil, core.ErrMissingAPIKey("FAL_API_KEY")
	}

	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &FALProvider{
		endpoint:   cfg.FALEndpoint,
		apiKey:     cfg.FALAPIKey,
		httpClient: core.GetHTTPClient(cfg, timeout),
		downloader: NewDownloader(cfg),
	}, nil
}

// Name identifies the provider.
func (p *FALProvider) Name() string { return "fal" }

// Generate creates one image via the FIBO endpoint and downloads it.
func (p *FALProvider) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	payload := falRequest{
		Prompt: req.Prompt,
		ImageSize: falImageSize{
			Width:  req.Width,
			Height: req.Height,
		},
		NumImages:          1,
		SyncMode:           true,
		EnableSafetyChecks: true,
		OutputFormat:       "png",
		ExpandPrompt:       true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("imagegen: marshal FAL request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: create FAL request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: FAL request: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: FAL API status %d: %s",
			ErrGenerationFailed, resp.StatusCode, strings.TrimSpace(string(errText)))
	}

	var decoded falResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding FAL response: %v", ErrGenerationFailed, err)
	}
	if len(decoded.Images) == 0 {
		return nil, fmt.Errorf("%w: FAL response has no images", ErrNoImages)
	}

	img := decoded.Images[0]
	data, contentType, err := p.downloader.Fetch(ctx, img.URL)
	if err != nil {
		return nil, err
	}
	if img.ContentType != "" {
		contentType = img.ContentType
	}

	return &GenerationResult{
		ImageData: data,
		ImageURL:  img.URL,
		Metadata: Metadata{
			Width:       img.Width,
			Height:      img.Height,
			ContentType: contentType,
		},
	}, nil
}

// Ensure FALProvider implements Provider at compile time.
var _ Provider = (*FALProvider)(nil)
