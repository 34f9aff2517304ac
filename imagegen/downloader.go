package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"studio_backend/core"
	"studio_backend/storage"
)

// maxImageBytes caps downloaded image size at 64 MB. Generated PNGs at
// 2048x2048 with 16-bit channels stay well under this.
const maxImageBytes = 64 << 20

// Downloader fetches generated images from provider-hosted temporary URLs.
// Provider URLs typically expire within an hour, so downloads happen
// immediately inside each provider's Generate call.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a Downloader honoring the TLS configuration.
// A zero timeout falls back to 120 seconds.
func NewDownloader(cfg *core.Config) *Downloader {
	timeout := 120 * time.Second
	if cfg != nil && cfg.GenerationTimeout > 0 {
		timeout = cfg.GenerationTimeout
	}
	return &Downloader{
		httpClient: core.GetHTTPClient(cfg, timeout),
	}
}

// Fetch downloads the image at url and returns its bytes and the reported
// content type.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: creating request: %v", ErrDownloadFailed, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d from %s", ErrDownloadFailed, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body: %v", ErrDownloadFailed, err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("%w: image exceeds %d bytes", ErrDownloadFailed, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty body from %s", ErrDownloadFailed, url)
	}

	// Providers occasionally return an HTML error page with a 200 status.
	// The header probe rejects anything that is not a decodable image.
	if format, ok := storage.ProbeFormat(data); !ok {
		return nil, "", fmt.Errorf("%w: got %q from %s", ErrInvalidImage, format, url)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
