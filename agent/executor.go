package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"studio_backend/core"
	"studio_backend/imagegen"
)

// Executor runs a batch of variant specs against a generation provider with
// a bounded number of in-flight tasks. Results come back in input order and
// per-task failures are captured as failed outcomes, never as a batch error.
type Executor struct {
	provider    imagegen.Provider
	logger      *zap.Logger
	maxParallel int
}

// NewExecutor builds an executor over the given provider. maxParallel is
// the admission cap on concurrently running generation tasks and must be
// positive. A nil logger disables logging.
func NewExecutor(provider imagegen.Provider, logger *zap.Logger, maxParallel int) (*Executor, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if maxParallel <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, maxParallel)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		provider:    provider,
		logger:      logger.Named("executor"),
		maxParallel: maxParallel,
	}, nil
}

// RunBatch executes every spec and returns one outcome per spec, in the
// same order. At most maxParallel generations run at once; the rest wait
// for admission. A failing or panicking task only marks its own slot as
// failed.
//
// Specs must carry unique IDs. The planner guarantees this; a violation is
// a programming error and panics.
func (e *Executor) RunBatch(ctx context.Context, specs []VariantSpec, base core.DesignRequest) []GenerationOutcome {
	assertUniqueIDs(specs)

	base.ApplyDefaults()
	outcomes := make([]GenerationOutcome, len(specs))
	if len(specs) == 0 {
		return outcomes
	}

	e.logger.Info("starting variant batch",
		zap.Int("variants", len(specs)),
		zap.Int("max_parallel", e.maxParallel),
		zap.String("provider", e.provider.Name()))

	sem := semaphore.NewWeighted(int64(e.maxParallel))
	var wg sync.WaitGroup
	for i := range specs {
		wg.Add(1)
		go func(i int, spec VariantSpec) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				// Each goroutine owns exactly one slot of the result
				// slice, so no lock is needed.
				outcomes[i] = failedOutcome(spec, fmt.Sprintf("admission aborted: %v", err))
				return
			}
			defer sem.Release(1)
			outcomes[i] = e.runTask(ctx, spec, base)
		}(i, specs[i])
	}
	wg.Wait()

	successful := 0
	for _, o := range outcomes {
		if o.Success {
			successful++
		}
	}
	e.logger.Info("variant batch complete",
		zap.Int("successful", successful),
		zap.Int("failed", len(outcomes)-successful))

	return outcomes
}

// runTask generates a single variant. Panics inside the provider are
// converted to failed outcomes so one bad task cannot take down the batch.
func (e *Executor) runTask(ctx context.Context, spec VariantSpec, base core.DesignRequest) (outcome GenerationOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("generation task panicked",
				zap.String("variant_id", spec.ID),
				zap.Any("panic", r))
			outcome = failedOutcome(spec, fmt.Sprintf("generation panicked: %v", r))
		}
		outcome.Duration = time.Since(start)
	}()

	prompt := BuildVariantPrompt(base.Prompt, spec)
	result, err := e.provider.Generate(ctx, imagegen.GenerationRequest{
		Prompt: prompt,
		Width:  base.Width,
		Height: base.Height,
	})
	if err != nil {
		e.logger.Warn("variant generation failed",
			zap.String("variant_id", spec.ID),
			zap.Error(err))
		return failedOutcome(spec, err.Error())
	}

	return GenerationOutcome{
		VariantID: spec.ID,
		Index:     spec.Index,
		AgentID:   "agent_" + spec.ID,
		Camera:    spec.Camera,
		Lighting:  spec.Lighting,
		Success:   true,
		ImageData: result.ImageData,
		ImageURL:  result.ImageURL,
		Metadata:  result.Metadata,
	}
}

// BuildVariantPrompt appends the variant's camera, lighting, and palette
// hints to the base prompt.
func BuildVariantPrompt(basePrompt string, spec VariantSpec) string {
	additions := []string{
		fmt.Sprintf("%s view", spec.Camera),
		fmt.Sprintf("%s lighting", spec.Lighting),
	}
	if len(spec.Colors) > 0 {
		additions = append(additions, "with colors "+strings.Join(spec.Colors, ", "))
	}
	return basePrompt + " " + strings.Join(additions, " ")
}

func failedOutcome(spec VariantSpec, reason string) GenerationOutcome {
	return GenerationOutcome{
		VariantID: spec.ID,
		Index:     spec.Index,
		AgentID:   "agent_" + spec.ID,
		Camera:    spec.Camera,
		Lighting:  spec.Lighting,
		Success:   false,
		Error:     reason,
	}
}

func assertUniqueIDs(specs []VariantSpec) {
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if _, dup := seen[s.ID]; dup {
			panic(fmt.Sprintf("agent: duplicate variant ID %q in batch", s.ID))
		}
		seen[s.ID] = struct{}{}
	}
}
