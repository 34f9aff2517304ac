package imagegen

import "errors"

// Sentinel errors for generation operations.
var (
	// ErrEmptyPrompt indicates a request with no prompt text.
	ErrEmptyPrompt = errors.New("imagegen: prompt cannot be empty")

	// ErrNoImages indicates the provider responded without any image.
	ErrNoImages = errors.New("imagegen: no images returned by provider")

	// ErrGenerationFailed indicates the provider reported a failure.
	ErrGenerationFailed = errors.New("imagegen: generation failed")

	// ErrPollTimeout indicates an async prediction never completed within
	// the polling budget.
	ErrPollTimeout = errors.New("imagegen: prediction polling timed out")

	// ErrDownloadFailed indicates the generated image could not be fetched
	// from its temporary URL.
	ErrDownloadFailed = errors.New("imagegen: image download failed")

	// ErrInvalidImage indicates a downloaded payload is not a supported
	// image format.
	ErrInvalidImage = errors.New("imagegen: payload is not a supported image")
)
