package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studio_backend/core"
)

func TestBriaProviderGenerate(t *testing.T) {
	imageBytes := testPNG(t)
	imageServer := newImageServer(t, imageBytes)

	var gotToken string
	var gotPayload briaRequest
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("api_token")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding request payload: %v", err)
		}
		resp := briaResponse{}
		resp.Result = append(resp.Result, struct {
			URLs []string `json:"urls"`
		}{URLs: []string{imageServer.URL + "/bria.png"}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer apiServer.Close()

	provider, err := NewBriaProvider(&core.Config{
		BriaAPIKey:        "bria-token",
		BriaEndpoint:      apiServer.URL,
		GenerationTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewBriaProvider: %v", err)
	}

	result, err := provider.Generate(context.Background(), GenerationRequest{
		Prompt: "ceramic kettle, studio lighting",
		Width:  1024,
		Height: 1024,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotToken != "bria-token" {
		t.Errorf("api_token header = %q, want bria-token", gotToken)
	}
	if gotPayload.NumResults != 1 || gotPayload.GuidanceScale != 7.5 || gotPayload.NumInferenceSteps != 50 {
		t.Errorf("payload = %+v, want num_results=1 guidance=7.5 steps=50", gotPayload)
	}
	if !bytes.Equal(result.ImageData, imageBytes) {
		t.Error("image bytes do not match served bytes")
	}
	// Bria reports no dimensions; the requested size is recorded.
	if result.Metadata.Width != 1024 || result.Metadata.Height != 1024 {
		t.Errorf("metadata dimensions = %dx%d, want requested 1024x1024", result.Metadata.Width, result.Metadata.Height)
	}
}

func TestBriaProviderEmptyResult(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(briaResponse{})
	}))
	defer apiServer.Close()

	provider, err := NewBriaProvider(&core.Config{
		BriaAPIKey:        "bria-token",
		BriaEndpoint:      apiServer.URL,
		GenerationTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewBriaProvider: %v", err)
	}

	if _, err := provider.Generate(context.Background(), GenerationRequest{Prompt: "x", Width: 512, Height: 512}); err == nil {
		t.Error("Generate with empty result expected error")
	}
}
