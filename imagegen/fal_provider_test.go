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

// newImageServer returns a test server that serves the given image bytes.
func newImageServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func falTestConfig(endpoint string) *core.Config {
	return &core.Config{
		Provider:          core.ProviderFAL,
		FALAPIKey:         "test-key",
		FALEndpoint:       endpoint,
		GenerationTimeout: 5 * time.Second,
	}
}

func TestFALProviderGenerate(t *testing.T) {
	imageBytes := testPNG(t)
	imageServer := newImageServer(t, imageBytes)

	var gotAuth string
	var gotPayload falRequest
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding request payload: %v", err)
		}
		json.NewEncoder(w).Encode(falResponse{
			Images: []falImage{{
				URL:         imageServer.URL + "/out.png",
				Width:       1024,
				Height:      1024,
				ContentType: "image/png",
			}},
		})
	}))
	defer apiServer.Close()

	provider, err := NewFALProvider(falTestConfig(apiServer.URL))
	if err != nil {
		t.Fatalf("NewFALProvider: %v", err)
	}

	result, err := provider.Generate(context.Background(), GenerationRequest{
		Prompt: "matte black camera body, three_quarter view",
		Width:  1024,
		Height: 1024,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotAuth != "Key test-key" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Key test-key")
	}
	if !gotPayload.SyncMode || gotPayload.NumImages != 1 {
		t.Errorf("payload = %+v, want sync_mode=true num_images=1", gotPayload)
	}
	if !bytes.Equal(result.ImageData, imageBytes) {
		t.Error("downloaded image bytes do not match served bytes")
	}
	if result.Metadata.Width != 1024 || result.Metadata.Height != 1024 {
		t.Errorf("metadata dimensions = %dx%d, want 1024x1024", result.Metadata.Width, result.Metadata.Height)
	}
}

func TestFALProviderGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		prompt  string
	}{
		{
			name:   "empty prompt rejected before any call",
			prompt: "   ",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("provider called the API despite empty prompt")
			},
		},
		{
			name:   "API error status surfaces",
			prompt: "a prompt",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
		},
		{
			name:   "empty image list surfaces",
			prompt: "a prompt",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(falResponse{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			provider, err := NewFALProvider(falTestConfig(server.URL))
			if err != nil {
				t.Fatalf("NewFALProvider: %v", err)
			}

			_, err = provider.Generate(context.Background(), GenerationRequest{
				Prompt: tt.prompt,
				Width:  1024,
				Height: 1024,
			})
			if err == nil {
				t.Error("Generate expected error, got nil")
			}
		})
	}
}

func TestNewFALProviderRequiresKey(t *testing.T) {
	_, err := NewFALProvider(&core.Config{FALEndpoint: "https://fal.run/x"})
	if err == nil {
		t.Fatal("NewFALProvider without key expected error")
	}
	if _, ok := core.IsConfigError(err); !ok {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestNewProviderFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *core.Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "fal",
			cfg:      &core.Config{Provider: core.ProviderFAL, FALAPIKey: "k"},
			wantName: "fal",
		},
		{
			name:     "bria",
			cfg:      &core.Config{Provider: core.ProviderBria, BriaAPIKey: "k"},
			wantName: "bria",
		},
		{
			name:     "replicate",
			cfg:      &core.Config{Provider: core.ProviderReplicate, ReplicateAPIKey: "k"},
			wantName: "replicate",
		},
		{
			name:     "openai",
			cfg:      &core.Config{Provider: core.ProviderOpenAI, OpenAIAPIKey: "k"},
			wantName: "openai",
		},
		{
			name:    "unknown provider",
			cfg:     &core.Config{Provider: "sketchy"},
			wantErr: true,
		},
		{
			name:    "nil config",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProviderFromConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProviderFromConfig: %v", err)
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", provider.Name(), tt.wantName)
			}
		})
	}
}
