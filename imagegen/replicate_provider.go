// Package imagegen provides clients for external image-generation services.
//
// replicate_provider.go implements the Replicate provider. Replicate is
// asynchronous: a prediction is created, then polled until it reaches a
// terminal status. Polling cadence and budget come from configuration.
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

// replicateModelVersion pins the FIBO model version used for predictions.
const replicateModelVersion = "bria-fibo-version-id"

// ReplicateProvider implements Provider against the Replicate predictions
// API.
type ReplicateProvider struct {
	endpoint     string
	apiToken     string
	pollInterval time.Duration
	maxAttempts  int
	httpClient   *http.Client
	downloader   *Downloader
}

type replicateCreateRequest struct {
	Version string          `json:"version"`
	Input   json.RawMessage `json:"input"`
}

type replicateInput struct {
	Prompt    string       `json:"prompt"`
	ImageSize falImageSize `json:"image_size"`
	NumImages int          `json:"num_images"`
}

// replicatePrediction is the subset of the prediction resource consumed by
// the poll loop. Output is either a single URL string or a list of URLs.
type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// NewReplicateProvider creates a Replicate provider from configuration.
func NewReplicateProvider(cfg *core.Config) (*ReplicateProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	if cfg.ReplicateAPIKey == "" {
		return nil, core.ErrMissingAPIKey("REPLICATE_API_KEY")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxAttempts := cfg.PollMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &ReplicateProvider{
		endpoint:     cfg.ReplicateEndpoint,
		apiToken:     cfg.ReplicateAPIKey,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		httpClient:   core.GetHTTPClient(cfg, timeout),
		downloader:   NewDownloader(cfg),
	}, nil
}

// Name identifies the provider.
func (p *ReplicateProvider) Name() string { return "replicate" }

// Generate creates a prediction, polls it to completion, and downloads the
// resulting image.
func (p *ReplicateProvider) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	input, err := json.Marshal(replicateInput{
		Prompt: req.Prompt,
		ImageSize: falImageSize{
			Width:  req.Width,
			Height: req.Height,
		},
		NumImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: marshal Replicate input: %w", err)
	}

	prediction, err := p.createPrediction(ctx, input)
	if err != nil {
		return nil, err
	}

	final, err := p.pollPrediction(ctx, prediction.ID)
	if err != nil {
		return nil, err
	}

	if final.Status != "succeeded" || len(final.Output) == 0 {
		return nil, fmt.Errorf("%w: Replicate prediction %s: %s",
			ErrGenerationFailed, final.Status, final.Error)
	}

	imageURL, err := decodeReplicateOutput(final.Output)
	if err != nil {
		return nil, err
	}

	data, contentType, err := p.downloader.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		ImageData: data,
		ImageURL:  imageURL,
		Metadata: Metadata{
			Width:       req.Width,
			Height:      req.Height,
			ContentType: contentType,
		},
	}, nil
}

// createPrediction submits a new prediction and returns the pending
// resource.
func (p *ReplicateProvider) createPrediction(ctx context.Context, input json.RawMessage) (*replicatePrediction, error) {
	body, err := json.Marshal(replicateCreateRequest{
		Version: replicateModelVersion,
		Input:   input,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: marshal Replicate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: create Replicate request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+p.apiToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: Replicate request: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: Replicate API status %d: %s",
			ErrGenerationFailed, resp.StatusCode, strings.TrimSpace(string(errText)))
	}

	var prediction replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("%w: decoding Replicate response: %v", ErrGenerationFailed, err)
	}
	if prediction.ID == "" {
		return nil, fmt.Errorf("%w: Replicate response missing prediction id", ErrGenerationFailed)
	}

	return &prediction, nil
}

// pollPrediction polls the prediction until it reaches a terminal status or
// the attempt budget runs out.
func (p *ReplicateProvider) pollPrediction(ctx context.Context, id string) (*replicatePrediction, error) {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrPollTimeout, ctx.Err())
		case <-time.After(p.pollInterval):
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"/"+id, nil)
		if err != nil {
			return nil, fmt.Errorf("imagegen: create Replicate poll request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Token "+p.apiToken)

		resp, err := p.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("%w: Replicate poll: %v", ErrGenerationFailed, err)
		}

		var prediction replicatePrediction
		decodeErr := json.NewDecoder(resp.Body).Decode(&prediction)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: decoding Replicate poll response: %v", ErrGenerationFailed, decodeErr)
		}

		switch prediction.Status {
		case "succeeded", "failed", "canceled":
			return &prediction, nil
		}
	}

	return nil, fmt.Errorf("%w: prediction %s after %d attempts", ErrPollTimeout, id, p.maxAttempts)
}

// decodeReplicateOutput extracts the first image URL from a prediction
// output, which is either a bare string or a list of strings.
func decodeReplicateOutput(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}

	return "", fmt.Errorf("%w: unrecognized Replicate output shape", ErrNoImages)
}

// Ensure ReplicateProvider implements Provider at compile time.
var _ Provider = (*ReplicateProvider)(nil)
