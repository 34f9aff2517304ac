package agent

import "errors"

// Sentinel errors for pipeline construction and preconditions.
var (
	// ErrNilProvider is returned when an executor is built without a
	// generation provider.
	ErrNilProvider = errors.New("agent: generation provider is nil")

	// ErrInvalidConcurrency is returned when the admission cap is not a
	// positive number.
	ErrInvalidConcurrency = errors.New("agent: max parallel agents must be positive")
)
