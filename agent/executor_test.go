package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"studio_backend/core"
	"studio_backend/imagegen"
)

// fakeProvider runs a caller-supplied generate function.
type fakeProvider struct {
	generate func(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
	return f.generate(ctx, req)
}

func okResult(req imagegen.GenerationRequest) *imagegen.GenerationResult {
	return &imagegen.GenerationResult{
		ImageData: []byte("img:" + req.Prompt),
		Metadata:  imagegen.Metadata{Width: req.Width, Height: req.Height, ContentType: "image/png"},
	}
}

func TestNewExecutorValidation(t *testing.T) {
	provider := &fakeProvider{}

	if _, err := NewExecutor(nil, nil, 4); !errors.Is(err, ErrNilProvider) {
		t.Errorf("nil provider error = %v, want ErrNilProvider", err)
	}
	for _, cap := range []int{0, -1} {
		if _, err := NewExecutor(provider, nil, cap); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("cap %d error = %v, want ErrInvalidConcurrency", cap, err)
		}
	}
	if _, err := NewExecutor(provider, nil, 1); err != nil {
		t.Errorf("cap 1: %v", err)
	}
}

func TestRunBatchPreservesOrder(t *testing.T) {
	// Earlier variants finish later; outcome order must still match
	// spec order.
	provider := &fakeProvider{
		generate: func(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
			if strings.Contains(req.Prompt, "three_quarter") {
				time.Sleep(30 * time.Millisecond)
			}
			return okResult(req), nil
		},
	}
	exec, err := NewExecutor(provider, nil, 4)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	specs := NewPlanner(nil).PlanVariants(core.DesignRequest{Prompt: "camera body"})
	outcomes := exec.RunBatch(context.Background(), specs, core.DesignRequest{Prompt: "camera body"})

	if len(outcomes) != len(specs) {
		t.Fatalf("got %d outcomes for %d specs", len(outcomes), len(specs))
	}
	for i, o := range outcomes {
		if o.VariantID != specs[i].ID {
			t.Errorf("outcomes[%d].VariantID = %q, want %q", i, o.VariantID, specs[i].ID)
		}
		if o.Index != i {
			t.Errorf("outcomes[%d].Index = %d, want %d", i, o.Index, i)
		}
		if !o.Success {
			t.Errorf("outcomes[%d] failed: %s", i, o.Error)
		}
	}
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	var calls int32
	provider := &fakeProvider{
		generate: func(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
			if atomic.AddInt32(&calls, 1) == 1 && strings.Contains(req.Prompt, "studio") {
				return nil, errors.New("quota exceeded")
			}
			return okResult(req), nil
		},
	}
	exec, err := NewExecutor(provider, nil, 1)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	specs := NewPlanner(nil).PlanVariants(core.DesignRequest{Prompt: "kettle"})
	outcomes := exec.RunBatch(context.Background(), specs, core.DesignRequest{Prompt: "kettle"})

	if len(outcomes) != len(specs) {
		t.Fatalf("got %d outcomes for %d specs", len(outcomes), len(specs))
	}
	failed := 0
	for _, o := range outcomes {
		if !o.Success {
			failed++
			if o.Error == "" {
				t.Error("failed outcome missing error message")
			}
			if o.VariantID == "" {
				t.Error("failed outcome missing variant ID")
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed outcomes = %d, want exactly 1", failed)
	}
}

func TestRunBatchRecoversPanics(t *testing.T) {
	provider := &fakeProvider{
		generate: func(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
			if strings.Contains(req.Prompt, "dramatic") {
				panic("provider exploded")
			}
			return okResult(req), nil
		},
	}
	exec, err := NewExecutor(provider, nil, 2)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	specs := NewPlanner(nil).PlanVariants(core.DesignRequest{Prompt: "speaker"})
	outcomes := exec.RunBatch(context.Background(), specs, core.DesignRequest{Prompt: "speaker"})

	for i, o := range outcomes {
		wantSuccess := specs[i].Lighting != core.LightingDramatic
		if o.Success != wantSuccess {
			t.Errorf("outcomes[%d].Success = %v, want %v", i, o.Success, wantSuccess)
		}
		if !wantSuccess && !strings.Contains(o.Error, "panicked") {
			t.Errorf("outcomes[%d].Error = %q, want panic note", i, o.Error)
		}
	}
}

func TestRunBatchHonorsAdmissionCap(t *testing.T) {
	const maxParallel = 2
	var inFlight, peak int32
	provider := &fakeProvider{
		generate: func(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return okResult(req), nil
		},
	}
	exec, err := NewExecutor(provider, nil, maxParallel)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	specs := make([]VariantSpec, 5)
	for i := range specs {
		specs[i] = VariantSpec{
			ID:       fmt.Sprintf("variant_%d", i),
			Index:    i,
			Camera:   core.CameraFront,
			Lighting: core.LightingStudio,
		}
	}
	outcomes := exec.RunBatch(context.Background(), specs, core.DesignRequest{Prompt: "headphones"})

	if got := atomic.LoadInt32(&peak); got > maxParallel {
		t.Errorf("peak concurrent generations = %d, want <= %d", got, maxParallel)
	}
	for i, o := range outcomes {
		if !o.Success {
			t.Errorf("outcomes[%d] failed: %s", i, o.Error)
		}
	}
}

func TestRunBatchEmptySpecs(t *testing.T) {
	exec, err := NewExecutor(&fakeProvider{}, nil, 4)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	outcomes := exec.RunBatch(context.Background(), nil, core.DesignRequest{Prompt: "x"})
	if len(outcomes) != 0 {
		t.Errorf("empty batch returned %d outcomes", len(outcomes))
	}
}

func TestRunBatchCancelledContext(t *testing.T) {
	var started sync.WaitGroup
	started.Add(1)
	release := make(chan struct{})
	var once sync.Once
	provider := &fakeProvider{
		generate: func(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
			once.Do(started.Done)
			<-release
			return okResult(req), nil
		},
	}
	exec, err := NewExecutor(provider, nil, 1)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		started.Wait()
		cancel()
		close(release)
	}()

	specs := NewPlanner(nil).PlanVariants(core.DesignRequest{Prompt: "kettle"})
	outcomes := exec.RunBatch(ctx, specs, core.DesignRequest{Prompt: "kettle"})

	// Still one outcome per spec; tasks denied admission report why.
	if len(outcomes) != len(specs) {
		t.Fatalf("got %d outcomes for %d specs", len(outcomes), len(specs))
	}
	aborted := 0
	for _, o := range outcomes {
		if !o.Success && strings.Contains(o.Error, "admission aborted") {
			aborted++
		}
	}
	if aborted == 0 {
		t.Error("expected at least one admission-aborted outcome")
	}
}

func TestRunBatchDuplicateIDsPanics(t *testing.T) {
	exec, err := NewExecutor(&fakeProvider{}, nil, 4)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate variant IDs should panic")
		}
	}()
	exec.RunBatch(context.Background(), []VariantSpec{
		{ID: "variant_0", Index: 0},
		{ID: "variant_0", Index: 1},
	}, core.DesignRequest{Prompt: "x"})
}

func TestBuildVariantPrompt(t *testing.T) {
	spec := VariantSpec{
		Camera:   core.CameraThreeQuarter,
		Lighting: core.LightingStudio,
		Colors:   []string{"#1a1a1a", "#ffffff"},
	}
	got := BuildVariantPrompt("matte black camera", spec)
	want := "matte black camera three_quarter view studio lighting with colors #1a1a1a, #ffffff"
	if got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}

	spec.Colors = nil
	got = BuildVariantPrompt("matte black camera", spec)
	want = "matte black camera three_quarter view studio lighting"
	if got != want {
		t.Errorf("prompt without colors = %q, want %q", got, want)
	}
}
