// Package validation runs pre-flight configuration checks with colored
// progress output before the backend starts serving.
package validation

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// StepStatus is the state of one validation step.
type StepStatus int

// Step states.
const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepSkipped
)

// String returns the lowercase name of the status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Step is one executed validation step.
type Step struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// SuiteResult aggregates a complete validation run.
type SuiteResult struct {
	Steps       []Step
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Duration    time.Duration
	Success     bool
}

// GetFirstError returns the first step error, or nil when all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Suite runs the configuration checks in order with progress output.
type Suite struct {
	output       io.Writer
	validator    *ConfigValidator
	showProgress bool
	failFast     bool
}

// NewSuite creates a suite with default settings.
func NewSuite() *Suite {
	return &Suite{
		output:       os.Stdout,
		validator:    NewConfigValidator(),
		showProgress: true,
	}
}

// WithOutput sets the writer for progress messages.
func (s *Suite) WithOutput(w io.Writer) *Suite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *Suite) WithShowProgress(show bool) *Suite {
	s.showProgress = show
	return s
}

// WithFailFast stops at the first failed step.
func (s *Suite) WithFailFast(failFast bool) *Suite {
	s.failFast = failFast
	return s
}

// WithEnvPath overrides the .env file location.
func (s *Suite) WithEnvPath(path string) *Suite {
	s.validator.WithEnvPath(path)
	return s
}

// Validate runs all checks. Provider credential and endpoint checks are
// skipped when the provider selection itself is invalid.
func (s *Suite) Validate() SuiteResult {
	startTime := time.Now()
	steps := make([]Step, 0, 6)

	if s.showProgress {
		s.printHeader("Design Studio Configuration Validation")
	}

	run := func(name string, fn func() CheckResult) bool {
		step := s.runStep(name, fn)
		steps = append(steps, step)
		return !(s.failFast && step.Status == StepFailed)
	}

	if !run("Environment File", s.validator.CheckEnvFile) {
		return s.finish(steps, startTime)
	}

	providerStep := s.runStep("Provider Selection", s.validator.CheckProviderSelection)
	steps = append(steps, providerStep)
	if s.failFast && providerStep.Status == StepFailed {
		return s.finish(steps, startTime)
	}

	if providerStep.Status == StepPassed {
		if !run("Provider Credentials", s.validator.CheckProviderCredentials) {
			return s.finish(steps, startTime)
		}
		if !run("Provider Endpoint", s.validator.CheckProviderEndpoint) {
			return s.finish(steps, startTime)
		}
	} else {
		steps = append(steps,
			s.skipStep("Provider Credentials", "skipped due to provider selection error"),
			s.skipStep("Provider Endpoint", "skipped due to provider selection error"))
	}

	if !run("Output Directory", s.validator.CheckOutputDir) {
		return s.finish(steps, startTime)
	}
	run("Database Directory", s.validator.CheckDatabaseDir)

	return s.finish(steps, startTime)
}

func (s *Suite) runStep(name string, fn func() CheckResult) Step {
	if s.showProgress {
		fmt.Fprintf(s.output, "  ◌ %s...", name)
	}

	startTime := time.Now()
	result := fn()
	step := Step{
		Name:    name,
		Message: result.Message,
		Error:   result.Error,
		Latency: time.Since(startTime),
	}
	if result.Valid {
		step.Status = StepPassed
	} else {
		step.Status = StepFailed
	}

	if s.showProgress {
		s.printStep(step)
	}
	return step
}

func (s *Suite) skipStep(name, message string) Step {
	step := Step{Name: name, Status: StepSkipped, Message: message}
	if s.showProgress {
		s.printStep(step)
	}
	return step
}

func (s *Suite) finish(steps []Step, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}
	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		}
	}

	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

func (s *Suite) printHeader(title string) {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

func (s *Suite) printStep(step Step) {
	var icon string
	var clr *color.Color
	switch step.Status {
	case StepPassed:
		icon, clr = "✓", color.New(color.FgGreen)
	case StepFailed:
		icon, clr = "✗", color.New(color.FgRed)
	case StepSkipped:
		icon, clr = "○", color.New(color.FgHiBlack)
	default:
		icon, clr = "?", color.New(color.FgWhite)
	}

	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)
	if step.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", step.Message)
	}
	fmt.Fprintln(s.output)

	if step.Status == StepFailed && step.Error != nil {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

func (s *Suite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		color.New(color.FgGreen, color.Bold).Fprintf(s.output, "━━━ Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed in %v)",
			result.PassedSteps, result.TotalSteps, result.Duration.Round(time.Millisecond))
		color.New(color.FgGreen, color.Bold).Fprintln(s.output, " ━━━")
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(s.output, "━━━ Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		color.New(color.FgRed, color.Bold).Fprintln(s.output, " ━━━")
	}
	fmt.Fprintln(s.output)
}
