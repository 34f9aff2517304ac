package iteration

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"studio_backend/imagegen"
)

// Runner construction errors.
var (
	ErrNilProvider        = errors.New("iteration: generation provider is nil")
	ErrInvalidConcurrency = errors.New("iteration: max parallel agents must be positive")
)

// Runner executes iteration specs against a generation provider under the
// same bounded-admission model as the variant executor.
type Runner struct {
	provider    imagegen.Provider
	logger      *zap.Logger
	maxParallel int
}

// NewRunner builds a runner. maxParallel must be positive; a nil logger
// disables logging.
func NewRunner(provider imagegen.Provider, logger *zap.Logger, maxParallel int) (*Runner, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if maxParallel <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, maxParallel)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		provider:    provider,
		logger:      logger.Named("iteration_runner"),
		maxParallel: maxParallel,
	}, nil
}

// Run generates every spec and returns one outcome per spec, in input
// order. Per-task failures become failed outcomes; the batch itself never
// errors.
func (r *Runner) Run(ctx context.Context, specs []Spec) []Outcome {
	outcomes := make([]Outcome, len(specs))
	if len(specs) == 0 {
		return outcomes
	}

	r.logger.Info("starting iteration batch",
		zap.Int("iterations", len(specs)),
		zap.Int("max_parallel", r.maxParallel),
		zap.String("provider", r.provider.Name()))

	sem := semaphore.NewWeighted(int64(r.maxParallel))
	var wg sync.WaitGroup
	for i := range specs {
		wg.Add(1)
		go func(i int, spec Spec) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = failedOutcome(spec, fmt.Sprintf("admission aborted: %v", err))
				return
			}
			defer sem.Release(1)
			outcomes[i] = r.runOne(ctx, spec)
		}(i, specs[i])
	}
	wg.Wait()
	return outcomes
}

func (r *Runner) runOne(ctx context.Context, spec Spec) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("iteration task panicked",
				zap.Int("iteration", spec.Number),
				zap.Any("panic", rec))
			outcome = failedOutcome(spec, fmt.Sprintf("generation panicked: %v", rec))
		}
	}()

	result, err := r.provider.Generate(ctx, imagegen.GenerationRequest{
		Prompt: spec.Params.Prompt,
		Width:  spec.Params.Width,
		Height: spec.Params.Height,
	})
	if err != nil {
		r.logger.Warn("iteration generation failed",
			zap.Int("iteration", spec.Number),
			zap.Error(err))
		return failedOutcome(spec, err.Error())
	}

	return Outcome{
		Number:        spec.Number,
		Success:       true,
		ImageData:     result.ImageData,
		ImageURL:      result.ImageURL,
		Params:        spec.Params,
		VariationType: spec.VariationType,
		Metadata:      result.Metadata,
	}
}

func failedOutcome(spec Spec, reason string) Outcome {
	return Outcome{
		Number:        spec.Number,
		Success:       false,
		Params:        spec.Params,
		VariationType: spec.VariationType,
		Error:         reason,
	}
}
